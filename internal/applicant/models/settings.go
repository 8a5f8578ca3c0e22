package models

import "fmt"

// Settings is the single mutable configuration record backing registration
// code allocation: a running serial plus the admission year and wave.
type Settings struct {
	LastSerial int    `json:"last_serial"`
	Year       string `json:"year"`
	Wave       string `json:"wave"`
}

// Code formats the registration code for a given serial, zero-padded to six
// digits: REG-2026-G1-000001.
func (s Settings) Code(serial int) string {
	return fmt.Sprintf("REG-%s-%s-%06d", s.Year, s.Wave, serial)
}
