package protocol

// DefaultAddress is the 7-bit I2C address of the AP33772.
const DefaultAddress = 0x51

// Register addresses of the AP33772 command set.
const (
	// RegSourcePDO is the start of the source capability block (SourcePDOLength bytes)
	RegSourcePDO = 0x00

	// RegPDONum holds the number of valid records in the capability block
	RegPDONum = 0x1C

	// RegStatus is the negotiation and protection status register
	RegStatus = 0x1D

	// RegMask enables the status conditions that assert the interrupt line
	RegMask = 0x1E

	// RegVoltage is the measured VBUS voltage (VoltageLSBmV per LSB)
	RegVoltage = 0x20

	// RegCurrent is the measured VBUS current (CurrentLSBmA per LSB)
	RegCurrent = 0x21

	// RegTemperature is the NTC temperature in degrees Celsius
	RegTemperature = 0x22

	// RegOCPThreshold is the over-current protection threshold (OCPThresholdLSBmA per LSB)
	RegOCPThreshold = 0x23

	// RegOTPThreshold is the over-temperature protection threshold in degrees Celsius
	RegOTPThreshold = 0x24

	// RegDeratingThreshold is the temperature at which output power is derated
	RegDeratingThreshold = 0x25

	// RegTR25 is the NTC resistance at 25C (2 bytes, little-endian, ohms)
	RegTR25 = 0x28

	// RegTR50 is the NTC resistance at 50C
	RegTR50 = 0x2A

	// RegTR75 is the NTC resistance at 75C
	RegTR75 = 0x2C

	// RegTR100 is the NTC resistance at 100C
	RegTR100 = 0x2E

	// RegRDO is the request data object register (RecordSize bytes)
	RegRDO = 0x30

	// RegVID is the vendor ID register
	RegVID = 0x34
)

// Record sizes.
const (
	// RecordSize is the size of one PDO or RDO record in bytes
	RecordSize = 4

	// MaxCapabilities is the number of capability slots the controller exposes
	MaxCapabilities = 7

	// SourcePDOLength is the size of the full capability block in bytes
	SourcePDOLength = MaxCapabilities * RecordSize
)

// Unit scaling of the data object fields.
const (
	FixedVoltageLSBmV   = 50
	FixedCurrentLSBmA   = 10
	PPSVoltageLSBmV     = 100
	PPSCurrentLSBmA     = 50
	RequestVoltageLSBmV = 20
)

// Unit scaling of the telemetry registers.
const (
	// VoltageLSBmV scales RegVoltage
	VoltageLSBmV = 80

	// CurrentLSBmA scales RegCurrent.
	// TODO: some register descriptions give 24mA/LSB; confirm against datasheet rev 3.
	CurrentLSBmA = 16

	// OCPThresholdLSBmA scales RegOCPThreshold
	OCPThresholdLSBmA = 50
)

// Bit layout of the capability records.
const (
	fixedCurrentMask  = 0x3FF
	fixedVoltageShift = 10
	fixedVoltageMask  = 0x3FF

	ppsCurrentMask       = 0x7F
	ppsMinVoltageShift   = 8
	ppsMinVoltageMask    = 0xFF
	ppsMaxVoltageShift   = 17
	ppsMaxVoltageMask    = 0xFF
	ppsTypeTag           = 0xC // top nibble: type=11b (augmented), subtype=00b
	ppsTypeShift         = 28
	fixedTypeMask        = 0xC0 // in the high byte
	augmentedTypeMask    = 0xF0 // in the high byte
	augmentedTypeHighTag = 0xC0
)

// Bit layout of the request records.
const (
	rdoObjPosShift = 28
	rdoObjPosMask  = 0x7

	rdoFixedMaxCurrentMask = 0x3FF
	rdoFixedOpCurrentShift = 10
	rdoFixedOpCurrentMask  = 0x3FF

	rdoPPSOpCurrentMask = 0x7F
	rdoPPSVoltageShift  = 9
	rdoPPSVoltageMask   = 0x7FF

	// Bits that must be zero in each request variant.
	rdoFixedReservedMask = 0x8FF00000
	rdoPPSReservedMask   = 0x8FF00180
)

// MaxObjPos is the largest object position a 3-bit field can carry.
const MaxObjPos = 7
