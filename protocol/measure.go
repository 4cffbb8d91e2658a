package protocol

// VoltageMV scales a RegVoltage reading to millivolts.
func VoltageMV(raw byte) uint16 {
	return uint16(raw) * VoltageLSBmV
}

// CurrentMA scales a RegCurrent reading to milliamps.
func CurrentMA(raw byte) uint16 {
	return uint16(raw) * CurrentLSBmA
}

// TemperatureC returns a RegTemperature reading in degrees Celsius.
func TemperatureC(raw byte) uint8 {
	return raw
}
