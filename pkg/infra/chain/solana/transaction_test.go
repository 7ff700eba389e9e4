package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

func TestCompileMessage_OrdersAccountsWritableSignersFirst(t *testing.T) {
	feePayer := base58.Encode(make([]byte, 32))
	writableUnsigned := base58.Encode(bytesOfLen(32, 1))
	readonlyUnsigned := base58.Encode(bytesOfLen(32, 2))

	ixs := []pool_out.Instruction{
		{
			ProgramID: base58.Encode(bytesOfLen(32, 3)),
			Accounts: []pool_out.AccountMeta{
				{Pubkey: writableUnsigned, IsWritable: true},
				{Pubkey: readonlyUnsigned},
			},
		},
	}

	msg := compileMessage(feePayer, base58.Encode(make([]byte, 32)), ixs)

	require.Equal(t, feePayer, msg.accountKeys[0])
	assert.Equal(t, uint8(1), msg.numRequiredSignatures) // only the fee payer signs
}

func TestCompileMessage_DedupsRepeatedAccounts(t *testing.T) {
	feePayer := base58.Encode(make([]byte, 32))
	shared := base58.Encode(bytesOfLen(32, 9))

	ixs := []pool_out.Instruction{
		{ProgramID: base58.Encode(bytesOfLen(32, 1)), Accounts: []pool_out.AccountMeta{{Pubkey: shared, IsWritable: true}}},
		{ProgramID: base58.Encode(bytesOfLen(32, 1)), Accounts: []pool_out.AccountMeta{{Pubkey: shared, IsWritable: true}}},
	}

	msg := compileMessage(feePayer, base58.Encode(make([]byte, 32)), ixs)

	occurrences := 0
	for _, k := range msg.accountKeys {
		if k == shared {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestCompiledMessage_SerializeAndIndexOf(t *testing.T) {
	feePayer := base58.Encode(make([]byte, 32))
	programID := base58.Encode(bytesOfLen(32, 7))

	ixs := []pool_out.Instruction{
		{ProgramID: programID, Data: []byte{0xAA}},
	}
	msg := compileMessage(feePayer, base58.Encode(bytesOfLen(32, 8)), ixs)

	raw, err := msg.serialize()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	idx, err := msg.indexOf(feePayer)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), idx)

	_, err = msg.indexOf(base58.Encode(bytesOfLen(32, 99)))
	assert.Error(t, err)
}

func TestSignAndEncode_ProducesValidTransaction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	feePayer := base58.Encode(pub)

	msg := compileMessage(feePayer, base58.Encode(bytesOfLen(32, 1)), nil)

	encoded, err := signAndEncode(msg, map[string]ed25519.PrivateKey{feePayer: priv})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSignAndEncode_MissingSignerZeroFills(t *testing.T) {
	feePayer := base58.Encode(make([]byte, 32))
	msg := compileMessage(feePayer, base58.Encode(bytesOfLen(32, 1)), nil)

	encoded, err := signAndEncode(msg, map[string]ed25519.PrivateKey{})
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}

func TestEncodeCompactU16(t *testing.T) {
	assert.Equal(t, []byte{0x00}, encodeCompactU16(0))
	assert.Equal(t, []byte{0x7f}, encodeCompactU16(127))
	assert.Equal(t, []byte{0x80, 0x01}, encodeCompactU16(128))
}

func bytesOfLen(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}
