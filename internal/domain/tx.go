package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ObjectRef pins an on-chain object at a specific version for use as a
// transaction input.
type ObjectRef struct {
	ObjectID string `json:"object_id"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest"`
}

// ArgumentKind tells how a command argument is resolved.
type ArgumentKind string

const (
	// ArgInput references an entry of TransactionBundle.Inputs.
	ArgInput ArgumentKind = "input"
	// ArgResult references the result of an earlier command.
	ArgResult ArgumentKind = "result"
	// ArgGas references the gas coin.
	ArgGas ArgumentKind = "gas"
)

// Argument is a reference to a transaction input, a prior command result, or
// the gas coin.
type Argument struct {
	Kind  ArgumentKind `json:"kind"`
	Index uint16       `json:"index"`
}

// Input is one externally supplied transaction input: either an object
// reference or a pure (JSON-encoded) value.
type Input struct {
	Object *ObjectRef      `json:"object,omitempty"`
	Pure   json.RawMessage `json:"pure,omitempty"`
}

// MoveCall invokes an entry function with generic type arguments.
type MoveCall struct {
	Package       string     `json:"package"`
	Module        string     `json:"module"`
	Function      string     `json:"function"`
	TypeArguments []string   `json:"type_arguments"`
	Arguments     []Argument `json:"arguments"`
}

// MergeCoins merges Sources into Destination, leaving Destination holding
// the combined balance.
type MergeCoins struct {
	Destination Argument   `json:"destination"`
	Sources     []Argument `json:"sources"`
}

// SplitCoins splits Amounts off Coin, producing one result coin per amount.
type SplitCoins struct {
	Coin    Argument   `json:"coin"`
	Amounts []Argument `json:"amounts"`
}

// Command is one sub-operation of a bundle. Exactly one field is set.
type Command struct {
	MoveCall   *MoveCall   `json:"move_call,omitempty"`
	MergeCoins *MergeCoins `json:"merge_coins,omitempty"`
	SplitCoins *SplitCoins `json:"split_coins,omitempty"`
}

func (c *Command) arguments() []Argument {
	switch {
	case c.MoveCall != nil:
		return c.MoveCall.Arguments
	case c.MergeCoins != nil:
		return append([]Argument{c.MergeCoins.Destination}, c.MergeCoins.Sources...)
	case c.SplitCoins != nil:
		return append([]Argument{c.SplitCoins.Coin}, c.SplitCoins.Amounts...)
	default:
		return nil
	}
}

// TransactionBundle is one atomic, ordered set of sub-operations plus a
// sender identity and a gas budget. The whole bundle executes or none of it
// does; this process only builds the description and hands it to an external
// signer/submitter.
type TransactionBundle struct {
	Sender    string    `json:"sender"`
	GasBudget uint64    `json:"gas_budget"`
	Inputs    []Input   `json:"inputs"`
	Commands  []Command `json:"commands"`
}

// AddObjectInput appends an object input and returns the argument that
// references it.
func (b *TransactionBundle) AddObjectInput(ref ObjectRef) Argument {
	b.Inputs = append(b.Inputs, Input{Object: &ref})
	return Argument{Kind: ArgInput, Index: uint16(len(b.Inputs) - 1)}
}

// AddPureInput appends a pure value input (JSON-encoded) and returns the
// argument that references it.
func (b *TransactionBundle) AddPureInput(v any) (Argument, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Argument{}, fmt.Errorf("bundle: encode pure input: %w", err)
	}
	b.Inputs = append(b.Inputs, Input{Pure: data})
	return Argument{Kind: ArgInput, Index: uint16(len(b.Inputs) - 1)}, nil
}

// AddCommand appends a command and returns the argument referencing its
// result.
func (b *TransactionBundle) AddCommand(c Command) Argument {
	b.Commands = append(b.Commands, c)
	return Argument{Kind: ArgResult, Index: uint16(len(b.Commands) - 1)}
}

// Validate checks the bundle invariant: every command argument must resolve
// to an existing input or to the result of a strictly earlier command.
func (b *TransactionBundle) Validate() error {
	for ci, cmd := range b.Commands {
		for _, arg := range cmd.arguments() {
			switch arg.Kind {
			case ArgInput:
				if int(arg.Index) >= len(b.Inputs) {
					return fmt.Errorf("bundle: command %d references missing input %d", ci, arg.Index)
				}
			case ArgResult:
				if int(arg.Index) >= ci {
					return fmt.Errorf("bundle: command %d references result %d before it exists", ci, arg.Index)
				}
			case ArgGas:
			default:
				return fmt.Errorf("bundle: command %d has unknown argument kind %q", ci, arg.Kind)
			}
		}
	}
	return nil
}

// Bytes serializes the bundle to its canonical JSON wire form.
func (b *TransactionBundle) Bytes() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("bundle: marshal: %w", err)
	}
	return data, nil
}

// EncodeBase64 returns the bundle's wire form base64-encoded, the shape the
// order indexer expects for partial-transaction bytes.
func (b *TransactionBundle) EncodeBase64() (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
