package ucsi

import (
	"testing"

	"github.com/usb-typec/typec-go/pkg/pd"
)

func TestCommandEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want uint64
	}{
		{
			name: "get capability",
			cmd:  GetCapability{},
			want: 0x06,
		},
		{
			name: "get connector capability connector 0",
			cmd:  GetConnectorCapability{Connector: 0},
			want: 0x10007,
		},
		{
			name: "get connector capability connector 1",
			cmd:  GetConnectorCapability{Connector: 1},
			want: 0x20007,
		},
		{
			name: "get cable property connector 0",
			cmd:  GetCableProperty{Connector: 0},
			want: 0x10011,
		},
		{
			name: "get connector status connector 2",
			cmd:  GetConnectorStatus{Connector: 2},
			want: 0x30012,
		},
		{
			name: "get cam supported connector 0",
			cmd:  GetCamSupported{Connector: 0},
			want: 0x1000D,
		},
		{
			name: "get current cam connector 0",
			cmd:  GetCurrentCam{Connector: 0},
			want: 0x1000E,
		},
		{
			name: "get alternate modes SOP connector 0 offset 0",
			cmd: GetAlternateModes{
				Recipient: pd.RecipientSOP,
				Connector: 0,
			},
			want: 0x0C | 1<<16 | 1<<24,
		},
		{
			name: "get alternate modes connector recipient offset 2",
			cmd: GetAlternateModes{
				Recipient: pd.RecipientConnector,
				Connector: 1,
				Offset:    2,
			},
			want: 0x0C | 2<<24 | 2<<32,
		},
		{
			name: "get source pdos of partner",
			cmd: GetPdos{
				Connector: 0,
				Partner:   true,
				Count:     3,
				Role:      pd.RoleSource,
			},
			want: 0x10 | 1<<16 | 1<<23 | 3<<32 | 1<<34,
		},
		{
			name: "get own sink pdos at offset 4",
			cmd: GetPdos{
				Connector: 1,
				Offset:    4,
				Count:     3,
				Role:      pd.RoleSink,
			},
			want: 0x10 | 2<<16 | 4<<24 | 3<<32,
		},
		{
			name: "get maximum source caps",
			cmd: GetPdos{
				Connector:  0,
				Count:      3,
				Role:       pd.RoleSource,
				SourceCaps: MaximumSourceCapabilities,
			},
			want: 0x10 | 1<<16 | 3<<32 | 1<<34 | 2<<35,
		},
		{
			name: "get discover identity from cable plug",
			cmd: GetPdMessage{
				Connector:    0,
				Recipient:    pd.RecipientSOPPrime,
				ResponseType: pd.ResponseDiscoverIdentity,
			},
			want: 0x15 | 1<<16 | 2<<23 | 4<<42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Encode(); got != tt.want {
				t.Errorf("Encode() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestCommandNumberMatchesEncoding(t *testing.T) {
	cmds := []Command{
		GetCapability{},
		GetConnectorCapability{},
		GetAlternateModes{},
		GetCamSupported{},
		GetCurrentCam{},
		GetPdos{},
		GetCableProperty{},
		GetConnectorStatus{},
		GetPdMessage{},
	}

	for _, cmd := range cmds {
		if got := uint8(cmd.Encode()); got != cmd.Number() {
			t.Errorf("%T: low byte %#x != Number %#x", cmd, got, cmd.Number())
		}
	}
}
