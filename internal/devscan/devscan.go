// Package devscan enumerates candidate serial devices through udev, so
// a deployment can locate the ADC, pulse, and control ports without
// hand-editing device paths every time the USB topology changes.
package devscan

import (
	"sort"
	"strings"

	"github.com/jochenvg/go-udev"
)

// PortInfo describes one enumerated serial device.
type PortInfo struct {
	Devnode  string
	VendorID string
	ModelID  string
	Serial   string
}

// List enumerates every tty-subsystem device node udev knows about.
// Devices without a device node (virtual consoles and the like) are
// skipped.
func List() ([]PortInfo, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("tty"); err != nil {
		return nil, err
	}
	devices, err := e.Devices()
	if err != nil {
		return nil, err
	}

	var ports []PortInfo
	for _, d := range devices {
		node := d.Devnode()
		if node == "" {
			continue
		}
		ports = append(ports, PortInfo{
			Devnode:  node,
			VendorID: d.PropertyValue("ID_VENDOR_ID"),
			ModelID:  d.PropertyValue("ID_MODEL_ID"),
			Serial:   d.PropertyValue("ID_SERIAL_SHORT"),
		})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Devnode < ports[j].Devnode })
	return ports, nil
}

// Filter returns the ports whose USB vendor ID matches vendorID
// (case-insensitive). An empty vendorID matches everything.
func Filter(ports []PortInfo, vendorID string) []PortInfo {
	var matched []PortInfo
	for _, p := range ports {
		if vendorID != "" && !strings.EqualFold(p.VendorID, vendorID) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}
