package sysfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// Power readings from the power supply class come in microvolts and
// microamps; connector status reports them in 10mV and 10mA steps.
const (
	voltageScale10mV = 2 // VoltageScale is in 5mV units
	currentScale10mA = 2 // CurrentScale is in 5mA units
	microPerStep     = 10000
)

// ConnectorStatus implements backend.Backend. Connection state comes
// from the partner directory, the power mode from the port's
// power_operation_mode attribute and power readings from the UCSI
// source power supply the kernel registers per connector.
func (b *Backend) ConnectorStatus(ctx context.Context, connector uint8) (ucsi.ConnectorStatus, error) {
	dir, err := b.portDir(connector)
	if err != nil {
		return ucsi.ConnectorStatus{}, err
	}

	var status ucsi.ConnectorStatus
	status.Connected = exists(b.partnerDir(connector))

	if mode, err := readTrimmed(filepath.Join(dir, "power_operation_mode")); err == nil {
		switch mode {
		case "default":
			status.PowerOperationMode = ucsi.PowerModeUSBDefault
		case "1.5A":
			status.PowerOperationMode = ucsi.PowerModeTypeC1A5
		case "3.0A":
			status.PowerOperationMode = ucsi.PowerModeTypeC3A
		case "usb_power_delivery":
			status.PowerOperationMode = ucsi.PowerModePD
		}
	}

	if status.Connected {
		// The port's data role tells us what the partner is.
		if role, err := readTrimmed(filepath.Join(dir, "data_role")); err == nil {
			if activeRole(role) == "host" {
				status.PartnerType = ucsi.PartnerUFP
			} else {
				status.PartnerType = ucsi.PartnerDFP
			}
		}
		status.PDVersion = readRevision(filepath.Join(b.partnerDir(connector), "usb_power_delivery_revision"))
	}

	b.fillPowerReading(connector, &status)
	return status, nil
}

// activeRole extracts the bracketed entry from a role attribute such
// as "[host] device".
func activeRole(s string) string {
	start := -1
	for i, c := range s {
		switch c {
		case '[':
			start = i + 1
		case ']':
			if start >= 0 {
				return s[start:i]
			}
		}
	}
	return s
}

// fillPowerReading reads the UCSI source power supply of the
// connector, if the kernel registered one.
func (b *Backend) fillPowerReading(connector uint8, status *ucsi.ConnectorStatus) {
	matches, err := filepath.Glob(filepath.Join(b.psyRoot, fmt.Sprintf("ucsi-source-psy-*%d", connector+1)))
	if err != nil || len(matches) == 0 {
		return
	}
	psy := matches[0]

	if readFlag(filepath.Join(psy, "online")) {
		status.PowerProvider = true
		status.ChargingStatus = ucsi.ChargingNominal
	}

	voltage, verr := readMilli(filepath.Join(psy, "voltage_now"))
	current, cerr := readMilli(filepath.Join(psy, "current_now"))
	if verr != nil || cerr != nil {
		return
	}
	status.PowerReadingReady = true
	status.VoltageScale = voltageScale10mV
	status.VoltageReading = uint16(voltage / microPerStep)
	status.CurrentScale = currentScale10mA
	status.AverageCurrent = uint16(current / microPerStep)
	if peak, err := readMilli(filepath.Join(psy, "current_max")); err == nil {
		status.PeakCurrent = uint16(peak / microPerStep)
	}
}
