// Package protocol implements the data objects exchanged with an AP33772-class
// USB Power Delivery sink controller.
//
// This package provides functions to decode the source capabilities (Power
// Data Objects) that the controller copies out of the charger's
// Source_Capabilities message, encode the Request Data Object the sink writes
// back, and decode the status and telemetry registers.
//
// # Register Records
//
// Every data object is a 32-bit record transferred little-endian (byte 3 is
// the most significant byte):
//
//	Fixed PDO:         [31:30]=00b [19:10] voltage (50mV) [9:0] max current (10mA)
//	PPS APDO:          [31:28]=1100b [24:17] max voltage (100mV) [15:8] min voltage (100mV) [6:0] max current (50mA)
//	Fixed RDO:         [30:28] obj pos [19:10] op current (10mA) [9:0] max current (10mA)
//	PPS RDO:           [30:28] obj pos [19:9] voltage (20mV) [6:0] op current (50mA)
//
// Reserved bits are always written as zero.
//
// # Decoding
//
// Use DecodeCapability for a single record, or BuildCatalog for the whole
// capability block read from the controller:
//
//	cat, err := protocol.BuildCatalog(int(count[0]), block)
//	if err != nil {
//	    return fmt.Errorf("build catalog: %w", err)
//	}
//	fmt.Print(cat)
//
// Records with an unknown type tag are kept in position as KindUnrecognized
// so that object positions stay aligned with the source's list.
//
// # Encoding
//
// EncodeRequest packs a Request into the 4 bytes written to RegRDO:
//
//	data, err := protocol.EncodeRequest(protocol.Request{
//	    Kind:       protocol.KindFixed,
//	    ObjPos:     2,
//	    MaxCurrent: 300,
//	    OpCurrent:  300,
//	})
//
// # Status
//
// DecodeStatus splits the status register into its flags; Status.Event
// classifies the negotiation outcome and Status.Faults returns the protection
// flags.
//
// # Reference
//
// AP33772 USB PD Sink Controller datasheet (Diodes Incorporated) and the USB
// Power Delivery Specification Revision 3.0, section 6.4.
package protocol
