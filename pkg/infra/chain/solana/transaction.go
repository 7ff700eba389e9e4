package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"

	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// compiledMessage is a from-scratch encoding of Solana's legacy message
// wire format: enough to build, sign, and serialize transactions this
// operator needs to send, without pulling in an SDK (none exists in the
// reference corpus).
type compiledMessage struct {
	numRequiredSignatures      uint8
	numReadonlySignedAccounts  uint8
	numReadonlyUnsignedAccounts uint8
	accountKeys                []string
	recentBlockhash            string
	instructions               []pool_out.Instruction
}

// compileMessage dedups account keys across every instruction, places
// signer/writable accounts first per Solana's message ordering rules,
// and returns the compiled message, with feePayer always at account index 0.
func compileMessage(feePayer, recentBlockhash string, instructions []pool_out.Instruction) compiledMessage {
	type acct struct {
		pubkey     string
		isSigner   bool
		isWritable bool
	}

	seen := map[string]*acct{}
	order := []string{feePayer}
	seen[feePayer] = &acct{pubkey: feePayer, isSigner: true, isWritable: true}

	for _, ix := range instructions {
		if _, ok := seen[ix.ProgramID]; !ok {
			seen[ix.ProgramID] = &acct{pubkey: ix.ProgramID}
			order = append(order, ix.ProgramID)
		}
		for _, am := range ix.Accounts {
			existing, ok := seen[am.Pubkey]
			if !ok {
				existing = &acct{pubkey: am.Pubkey}
				seen[am.Pubkey] = existing
				order = append(order, am.Pubkey)
			}
			if am.IsSigner {
				existing.isSigner = true
			}
			if am.IsWritable {
				existing.isWritable = true
			}
		}
	}

	writableSigners, readonlySigners, writableUnsigned, readonlyUnsigned := []string{}, []string{}, []string{}, []string{}
	for _, key := range order {
		a := seen[key]
		switch {
		case a.isSigner && a.isWritable:
			writableSigners = append(writableSigners, key)
		case a.isSigner:
			readonlySigners = append(readonlySigners, key)
		case a.isWritable:
			writableUnsigned = append(writableUnsigned, key)
		default:
			readonlyUnsigned = append(readonlyUnsigned, key)
		}
	}

	keys := append(append(append(writableSigners, readonlySigners...), writableUnsigned...), readonlyUnsigned...)

	return compiledMessage{
		numRequiredSignatures:       uint8(len(writableSigners) + len(readonlySigners)),
		numReadonlySignedAccounts:   uint8(len(readonlySigners)),
		numReadonlyUnsignedAccounts: uint8(len(readonlyUnsigned)),
		accountKeys:                 keys,
		recentBlockhash:             recentBlockhash,
		instructions:                instructions,
	}
}

func (m compiledMessage) indexOf(pubkey string) (uint8, error) {
	for i, k := range m.accountKeys {
		if k == pubkey {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("solana: account %s not present in compiled message", pubkey)
}

func encodeCompactU16(n int) []byte {
	out := []byte{}
	v := uint32(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// serialize renders the message wire bytes: header, account keys,
// blockhash, then each compiled instruction (program-index,
// compact-array of account indexes, compact-array of data).
func (m compiledMessage) serialize() ([]byte, error) {
	var out []byte
	out = append(out, m.numRequiredSignatures, m.numReadonlySignedAccounts, m.numReadonlyUnsignedAccounts)

	out = append(out, encodeCompactU16(len(m.accountKeys))...)
	for _, key := range m.accountKeys {
		raw, err := base58.Decode(key)
		if err != nil {
			return nil, fmt.Errorf("solana: account key %q: %w", key, err)
		}
		out = append(out, raw...)
	}

	blockhash, err := base58.Decode(m.recentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("solana: recent blockhash: %w", err)
	}
	out = append(out, blockhash...)

	out = append(out, encodeCompactU16(len(m.instructions))...)
	for _, ix := range m.instructions {
		progIdx, err := m.indexOf(ix.ProgramID)
		if err != nil {
			return nil, err
		}
		out = append(out, progIdx)

		out = append(out, encodeCompactU16(len(ix.Accounts))...)
		for _, am := range ix.Accounts {
			idx, err := m.indexOf(am.Pubkey)
			if err != nil {
				return nil, err
			}
			out = append(out, idx)
		}

		out = append(out, encodeCompactU16(len(ix.Data))...)
		out = append(out, ix.Data...)
	}

	return out, nil
}

// signAndEncode signs the compiled message with every signer this
// operator holds keys for (normally just its own) and base64-encodes the
// full transaction: signatures || message. A partially-signed transaction
// (e.g. one awaiting the client's own signature) is still valid wire
// format with zero-filled placeholder signatures for the missing ones.
func signAndEncode(msg compiledMessage, signers map[string]ed25519.PrivateKey) (string, error) {
	messageBytes, err := msg.serialize()
	if err != nil {
		return "", err
	}

	sigs := make([][]byte, msg.numRequiredSignatures)
	for i := 0; i < int(msg.numRequiredSignatures); i++ {
		pubkey := msg.accountKeys[i]
		if key, ok := signers[pubkey]; ok {
			sigs[i] = ed25519.Sign(key, messageBytes)
		} else {
			sigs[i] = make([]byte, ed25519.SignatureSize)
		}
	}

	var out []byte
	out = append(out, encodeCompactU16(len(sigs))...)
	for _, s := range sigs {
		out = append(out, s...)
	}
	out = append(out, messageBytes...)

	return base64.StdEncoding.EncodeToString(out), nil
}
