package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// Parser decodes the client-submitted commit-balance transaction enough
// to validate its instruction shape before the operator co-signs it.
type Parser struct {
	computeBudgetProgramID string
	poolProgramID          string
	operatorPubkey         string
}

func NewParser(poolProgramID, operatorPubkey string) *Parser {
	return &Parser{computeBudgetProgramID: "ComputeBudget111111111111111111111111111111", poolProgramID: poolProgramID, operatorPubkey: operatorPubkey}
}

var _ pool_out.TransactionParser = (*Parser)(nil)

// ParseAttributionTransaction re-derives the same compact message layout
// signAndEncode produces and walks its instruction list, requiring it be
// exactly [compute-budget..., attribute(authority, amount)] optionally
// followed by [claim(authority, amount)] — anything else is rejected.
func (p *Parser) ParseAttributionTransaction(txBase64 string) (*pool_out.ParsedAttributionTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return nil, fmt.Errorf("parse transaction: invalid base64: %w", err)
	}

	sigCount, off, err := readCompactU16(raw, 0)
	if err != nil {
		return nil, err
	}
	sigSectionOffset := off
	off += sigCount * 64 // skip signature placeholders, not verified here
	messageOffset := off

	numRequiredSignatures := int(raw[off])
	off += 3 // numRequiredSignatures, numReadonlySigned, numReadonlyUnsigned

	numAccounts, off2, err := readCompactU16(raw, off)
	if err != nil {
		return nil, err
	}
	off = off2

	accountKeys := make([]string, numAccounts)
	for i := 0; i < numAccounts; i++ {
		if off+32 > len(raw) {
			return nil, fmt.Errorf("parse transaction: truncated account keys")
		}
		accountKeys[i] = base58.Encode(raw[off : off+32])
		off += 32
	}
	if numRequiredSignatures < 1 || numRequiredSignatures > len(accountKeys) {
		return nil, fmt.Errorf("parse transaction: malformed signer count")
	}
	feePayer := accountKeys[0]

	operatorIndex := -1
	for i := 0; i < numRequiredSignatures; i++ {
		if accountKeys[i] == p.operatorPubkey {
			operatorIndex = i
			break
		}
	}
	if operatorIndex == -1 {
		return nil, fmt.Errorf("parse transaction: operator is not a required signer of this transaction")
	}

	off += 32 // recent blockhash

	numInstructions, off3, err := readCompactU16(raw, off)
	if err != nil {
		return nil, err
	}
	off = off3

	result := &pool_out.ParsedAttributionTransaction{
		FeePayer:                feePayer,
		Raw:                     raw,
		MessageOffset:           messageOffset,
		OperatorSignatureOffset: sigSectionOffset + operatorIndex*64,
	}
	sawAttribute := false

	for i := 0; i < numInstructions; i++ {
		if off >= len(raw) {
			return nil, fmt.Errorf("parse transaction: truncated instruction list")
		}
		programIdx := int(raw[off])
		off++

		numIxAccounts, off4, err := readCompactU16(raw, off)
		if err != nil {
			return nil, err
		}
		off = off4

		ixAccountIdx := make([]int, numIxAccounts)
		for j := 0; j < numIxAccounts; j++ {
			ixAccountIdx[j] = int(raw[off])
			off++
		}

		dataLen, off5, err := readCompactU16(raw, off)
		if err != nil {
			return nil, err
		}
		off = off5
		if off+dataLen > len(raw) {
			return nil, fmt.Errorf("parse transaction: truncated instruction data")
		}
		data := raw[off : off+dataLen]
		off += dataLen

		if programIdx >= len(accountKeys) {
			return nil, fmt.Errorf("parse transaction: instruction references unknown program index")
		}
		programID := accountKeys[programIdx]

		switch {
		case programID == p.computeBudgetProgramID:
			continue
		case programID == p.poolProgramID && len(data) >= 1 && data[0] == 0x02:
			if sawAttribute {
				return nil, fmt.Errorf("parse transaction: more than one attribute instruction")
			}
			if len(data) != 9 || len(ixAccountIdx) < 2 {
				return nil, fmt.Errorf("parse transaction: malformed attribute instruction")
			}
			sawAttribute = true
			result.MemberAuthority = accountKeys[ixAccountIdx[1]]
			result.AttributeAmount = binary.LittleEndian.Uint64(data[1:9])
		case programID == p.poolProgramID && len(data) >= 1 && data[0] == 0x03:
			if !sawAttribute {
				return nil, fmt.Errorf("parse transaction: claim instruction before attribute instruction")
			}
			if len(data) != 9 {
				return nil, fmt.Errorf("parse transaction: malformed claim instruction")
			}
			result.HasClaim = true
			result.ClaimAmount = binary.LittleEndian.Uint64(data[1:9])
		default:
			return nil, fmt.Errorf("parse transaction: unexpected instruction for program %s", programID)
		}
	}

	if !sawAttribute {
		return nil, fmt.Errorf("parse transaction: missing attribute instruction")
	}

	return result, nil
}

func readCompactU16(raw []byte, off int) (int, int, error) {
	var value, shift uint32
	for {
		if off >= len(raw) {
			return 0, 0, fmt.Errorf("parse transaction: truncated compact-u16")
		}
		b := raw[off]
		off++
		value |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return int(value), off, nil
}
