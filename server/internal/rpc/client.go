package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/obsidianstack/pokedex/pkg/types"
)

// Client calls the Pokedex service over cc with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*types.PokemonList, error) {
	out := new(types.PokemonList)
	if err := c.invoke(ctx, methodList, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in *types.PokemonPatch, opts ...grpc.CallOption) (*types.Pokemon, error) {
	out := new(types.Pokemon)
	if err := c.invoke(ctx, methodCreate, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*types.Pokemon, error) {
	out := new(types.Pokemon)
	if err := c.invoke(ctx, methodGet, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*types.Pokemon, error) {
	out := new(types.Pokemon)
	if err := c.invoke(ctx, methodUpdate, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) error {
	return c.invoke(ctx, methodDelete, in, new(Empty), opts)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
