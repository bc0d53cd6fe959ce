package devscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ports() []PortInfo {
	return []PortInfo{
		{Devnode: "/dev/ttyUSB0", VendorID: "0403", ModelID: "6001", Serial: "A1"},
		{Devnode: "/dev/ttyUSB1", VendorID: "0403", ModelID: "6001", Serial: "A2"},
		{Devnode: "/dev/ttyACM0", VendorID: "2341", ModelID: "0043", Serial: "B1"},
		{Devnode: "/dev/ttyS0"},
	}
}

func TestFilter_ByVendor(t *testing.T) {
	matched := Filter(ports(), "0403")
	assert.Len(t, matched, 2)
	assert.Equal(t, "/dev/ttyUSB0", matched[0].Devnode)
	assert.Equal(t, "/dev/ttyUSB1", matched[1].Devnode)
}

func TestFilter_VendorCaseInsensitive(t *testing.T) {
	matched := Filter(ports(), "04F3")
	assert.Empty(t, matched)

	matched = Filter([]PortInfo{{Devnode: "/dev/ttyUSB0", VendorID: "04F3"}}, "04f3")
	assert.Len(t, matched, 1)
}

func TestFilter_EmptyVendorMatchesAll(t *testing.T) {
	nodes := Filter(ports(), "")
	assert.Len(t, nodes, 4)
}
