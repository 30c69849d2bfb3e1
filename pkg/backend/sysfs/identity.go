package sysfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// PDMessage implements backend.Backend. The kernel stores the partner
// and cable Discover Identity responses under an identity directory;
// other PD messages are not exposed through sysfs.
func (b *Backend) PDMessage(ctx context.Context, connector uint8, recipient pd.MessageRecipient, responseType pd.MessageResponseType) (*pd.DiscoverIdentity, error) {
	if responseType != pd.ResponseDiscoverIdentity {
		return nil, fmt.Errorf("pd message response type %s: %w", responseType, errdefs.ErrNotSupported)
	}
	if _, err := b.portDir(connector); err != nil {
		return nil, err
	}

	var dir string
	switch {
	case recipient == pd.RecipientSOP:
		dir = filepath.Join(b.partnerDir(connector), "identity")
	case recipient.CablePlug():
		dir = filepath.Join(b.cableDir(connector), "identity")
	default:
		return nil, fmt.Errorf("identity of %s: %w", recipient, errdefs.ErrNotSupported)
	}
	if !exists(dir) {
		return nil, fmt.Errorf("no identity for %s on connector %d: %w", recipient, connector, errdefs.ErrNotSupported)
	}

	idHeader, err := readHexWord(filepath.Join(dir, "id_header"))
	if err != nil || idHeader == 0 {
		return nil, fmt.Errorf("identity not discovered: %w", errdefs.ErrNotSupported)
	}
	certStat, err := readHexWord(filepath.Join(dir, "cert_stat"))
	if err != nil {
		return nil, err
	}
	product, err := readHexWord(filepath.Join(dir, "product"))
	if err != nil {
		return nil, err
	}

	// Reassemble the message the responder would have sent so the
	// shared decoder applies its consistency checks.
	header := pd.VDMHeader{
		SVID:        0xFF00,
		Structured:  true,
		CommandType: pd.VDMAck,
		Command:     pd.VDMDiscoverIdentity,
	}
	words := []uint32{header.Encode(), idHeader, certStat, product}
	for i := 1; i <= 3; i++ {
		vdo, err := readHexWord(filepath.Join(dir, fmt.Sprintf("product_type_vdo%d", i)))
		if err != nil {
			break
		}
		words = append(words, vdo)
	}
	for len(words) > 4 && words[len(words)-1] == 0 {
		words = words[:len(words)-1]
	}

	return pd.DecodeDiscoverIdentity(words, recipient)
}
