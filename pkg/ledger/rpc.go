package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Client reaches a remote hash-ledger node over JSON-RPC. Same contract as
// the embedded Store; the node returns its own transaction hash as the
// write reference.
type Client struct {
	rpc *gethrpc.Client
}

func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing hash ledger: %w", err)
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() { c.rpc.Close() }

func (c *Client) AddHash(ctx context.Context, id []byte, hash [HashSize]byte) (string, error) {
	if len(id) == 0 {
		return "", ErrBadIdentifier
	}
	var txRef string
	err := c.rpc.CallContext(ctx, &txRef, "hashledger_addHash",
		hexutil.Bytes(id), hexutil.Bytes(hash[:]))
	if err != nil {
		return "", fmt.Errorf("hashledger_addHash: %w", err)
	}
	return txRef, nil
}

func (c *Client) GetHashes(ctx context.Context, id []byte) ([][HashSize]byte, error) {
	if len(id) == 0 {
		return nil, ErrBadIdentifier
	}
	var raw []hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &raw, "hashledger_getHashes", hexutil.Bytes(id)); err != nil {
		return nil, fmt.Errorf("hashledger_getHashes: %w", err)
	}
	out := make([][HashSize]byte, 0, len(raw))
	for _, b := range raw {
		if len(b) != HashSize {
			return nil, fmt.Errorf("ledger returned %d-byte hash, want %d", len(b), HashSize)
		}
		var h [HashSize]byte
		copy(h[:], b)
		out = append(out, h)
	}
	return out, nil
}
