package content

import (
	"bytes"
	"context"
	"fmt"
	"io"

	shell "github.com/ipfs/go-ipfs-api"
)

// IPFSStore talks to a kubo node over its RPC API. Ids are CIDs, so the
// content-addressing property comes from IPFS itself. Put pins what it adds
// so the daemon's garbage collector cannot drop referenced documents.
type IPFSStore struct {
	sh *shell.Shell
}

// NewIPFSStore connects to the kubo RPC API at addr (host:port or multiaddr).
func NewIPFSStore(addr string) *IPFSStore {
	return &IPFSStore{sh: shell.NewShell(addr)}
}

func (s *IPFSStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cid, err := s.sh.Add(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if err := s.sh.Pin(cid); err != nil {
		return "", fmt.Errorf("ipfs pin %s: %w", cid, err)
	}
	return cid, nil
}

func (s *IPFSStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.sh.Cat(id)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", id, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *IPFSStore) Pin(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sh.Pin(id); err != nil {
		return fmt.Errorf("ipfs pin %s: %w", id, err)
	}
	return nil
}
