package abi

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func keccak(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

var transferMethod = &Method{
	Signature: "transfer(address,uint256)",
	Selector:  [4]byte{0xa9, 0x05, 0x9c, 0xbb},
	Inputs:    MustParseTypes("address", "uint256"),
	Outputs:   MustParseTypes("bool"),
}

func TestMethodID(t *testing.T) {
	assert.Equal(t, "0xa9059cbb", transferMethod.ID())
}

func TestPackUnpack(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000b0")

	call, err := Pack[bool](transferMethod, to, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, call.Data, 4+64)
	assert.Equal(t, transferMethod.Selector[:], call.Data[:4])
	assert.Equal(t, to.Bytes(), call.Data[4+12:4+32])
	assert.Equal(t, byte(5), call.Data[len(call.Data)-1])

	ok, err := call.Decode(word(1))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = call.Decode(word(2))
	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr))
}

func TestPackWrapsEncodeErrors(t *testing.T) {
	_, err := Pack[bool](transferMethod, "not an address", big.NewInt(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "packing transfer(address,uint256)")
}

func TestUnpackMultipleOutputs(t *testing.T) {
	m := &Method{
		Signature: "reserves()",
		Outputs:   MustParseTypes("uint112", "uint112", "uint32"),
	}
	ret, err := Encode(m.Outputs, big.NewInt(10), big.NewInt(20), uint32(30))
	require.NoError(t, err)

	type reserves struct {
		Reserve0  *big.Int
		Reserve1  *big.Int
		Timestamp uint32
	}
	out, err := Unpack[reserves](m, ret)
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Reserve0.Int64())
	assert.Equal(t, int64(20), out.Reserve1.Int64())
	assert.Equal(t, uint32(30), out.Timestamp)

	_, err = Unpack[*big.Int](m, ret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a struct")
}

func TestUnpackNoOutputs(t *testing.T) {
	m := &Method{Signature: "poke()"}
	out, err := Unpack[struct{}](m, nil)
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, out)
}

func TestUnpackRejectsLengthMismatch(t *testing.T) {
	balanceOf := &Method{Signature: "balanceOf(address)", Outputs: MustParseTypes("uint256")}
	decimals := &Method{Signature: "decimals()", Outputs: MustParseTypes("uint8")}
	poke := &Method{Signature: "poke()"}

	var decErr *DecodeError

	_, err := Unpack[*big.Int](balanceOf, concat(word(0x05), word(0x00)))
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, 32, decErr.Offset)

	_, err = Unpack[uint8](decimals, append(word(0x12), 0x00))
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Reason, "not a multiple of 32")

	_, err = Unpack[struct{}](poke, word(0x01))
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "32 trailing bytes", decErr.Reason)

	n, err := Unpack[uint8](decimals, word(0x12))
	require.NoError(t, err)
	assert.Equal(t, uint8(18), n)
}

var transferEvent = &Event{
	Signature: "Transfer(address,address,uint256)",
	Topic:     common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
	Inputs:    MustParseTypes("address", "address", "uint256"),
	Indexed:   []bool{true, true, false},
}

type transferLog struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

func TestUnpackEvent(t *testing.T) {
	from := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	to := common.HexToAddress("0x00000000000000000000000000000000000000f2")
	topics := []common.Hash{transferEvent.Topic, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())}

	var out transferLog
	require.NoError(t, UnpackEvent(transferEvent, topics, word(0x03, 0xe8), &out))
	assert.Equal(t, from, out.From)
	assert.Equal(t, to, out.To)
	assert.Equal(t, int64(1000), out.Value.Int64())
}

func TestUnpackEventRejects(t *testing.T) {
	addr := common.BytesToHash([]byte{0x01})

	tests := []struct {
		name   string
		topics []common.Hash
	}{
		{"no topics", nil},
		{"wrong signature", []common.Hash{common.HexToHash("0x01"), addr, addr}},
		{"missing indexed topic", []common.Hash{transferEvent.Topic, addr}},
		{"extra topic", []common.Hash{transferEvent.Topic, addr, addr, addr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out transferLog
			err := UnpackEvent(transferEvent, tt.topics, word(0x01), &out)
			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr), "expected *DecodeError, got %v", err)
		})
	}
}

func TestUnpackEventRejectsNonCanonicalTopic(t *testing.T) {
	dirty := common.HexToHash("0xff000000000000000000000000000000000000000000000000000000000000f1")
	clean := common.BytesToHash([]byte{0xf2})

	var out transferLog
	err := UnpackEvent(transferEvent, []common.Hash{transferEvent.Topic, dirty, clean}, word(0x01), &out)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestUnpackEventRejectsTrailingData(t *testing.T) {
	from := common.BytesToHash([]byte{0xf1})
	to := common.BytesToHash([]byte{0xf2})

	var out transferLog
	err := UnpackEvent(transferEvent, []common.Hash{transferEvent.Topic, from, to}, concat(word(0x01), word(0x02)), &out)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, 32, decErr.Offset)
}

func TestUnpackEventIndexedTuple(t *testing.T) {
	ev := &Event{
		Signature: "Moved((uint256,uint256),uint8)",
		Topic:     common.BytesToHash(keccak([]byte("Moved((uint256,uint256),uint8)"))),
		Inputs:    MustParseTypes("(uint256,uint256)", "uint8"),
		Indexed:   []bool{true, true},
	}
	pointHash := common.BytesToHash(keccak(concat(word(0x01), word(0x02))))

	var out struct {
		Point common.Hash
		Step  uint8
	}
	require.NoError(t, UnpackEvent(ev, []common.Hash{ev.Topic, pointHash, common.BytesToHash([]byte{0x03})}, nil, &out))
	assert.Equal(t, pointHash, out.Point)
	assert.Equal(t, uint8(3), out.Step)

	err := UnpackEvent(ev, []common.Hash{ev.Topic, pointHash, common.BytesToHash([]byte{0x01, 0x00})}, nil, &out)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestUnpackEventHashedIndexedString(t *testing.T) {
	ev := &Event{
		Signature: "Named(string,uint256)",
		Topic:     common.BytesToHash(keccak([]byte("Named(string,uint256)"))),
		Inputs:    MustParseTypes("string", "uint256"),
		Indexed:   []bool{true, false},
	}
	nameHash := common.BytesToHash(keccak([]byte("alice")))

	var out struct {
		Name  common.Hash
		Score *big.Int
	}
	require.NoError(t, UnpackEvent(ev, []common.Hash{ev.Topic, nameHash}, word(0x07), &out))
	assert.Equal(t, nameHash, out.Name)
	assert.Equal(t, int64(7), out.Score.Int64())
}

func TestUnpackAnonymousEvent(t *testing.T) {
	ev := &Event{
		Signature: "Ping(uint8)",
		Anonymous: true,
		Inputs:    MustParseTypes("uint8"),
		Indexed:   []bool{true},
	}

	var out struct{ Seq uint8 }
	require.NoError(t, UnpackEvent(ev, []common.Hash{common.BytesToHash([]byte{0x09})}, nil, &out))
	assert.Equal(t, uint8(9), out.Seq)
}

func TestUnpackError(t *testing.T) {
	e := &Error{
		Signature: "InsufficientBalance(uint256,uint256)",
		Selector:  [4]byte{0xde, 0xad, 0xbe, 0xef},
		Inputs:    MustParseTypes("uint256", "uint256"),
	}
	body, err := Encode(e.Inputs, big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)

	var out struct {
		Available *big.Int
		Required  *big.Int
	}
	require.NoError(t, UnpackError(e, append(e.Selector[:], body...), &out))
	assert.Equal(t, int64(1), out.Available.Int64())
	assert.Equal(t, int64(2), out.Required.Int64())

	err = UnpackError(e, append([]byte{0, 0, 0, 0}, body...), &out)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Contains(t, decErr.Reason, "selector mismatch")

	assert.Error(t, UnpackError(e, []byte{0xde}, &out))
}
