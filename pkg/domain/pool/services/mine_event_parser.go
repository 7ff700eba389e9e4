package pool_services

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
)

const mineEventByteLen = 8 + 4 + 8 + 8 + 8 + 8 + 8 + 8 // balance, difficulty, last_hash_at, timing, 4x reward fields

// ParseMineEvent scans log_messages in reverse for the LAST line
// prefixed "Program return: <programID> ", base64-decodes the
// remainder, and decodes the fixed MineEvent layout (§4.6/§6). A missing
// line or a wrong program id is a ChainPermanent error: the caller drops
// the event and continues rather than crashing the webhook handler.
func ParseMineEvent(logMessages []string, programID string) (pool_entities.MiningEvent, error) {
	prefix := fmt.Sprintf("Program return: %s ", programID)

	for i := len(logMessages) - 1; i >= 0; i-- {
		line := logMessages[i]
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		encoded := strings.TrimPrefix(line, prefix)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return pool_entities.MiningEvent{}, fmt.Errorf("mine event: %w: %v", errChainPermanent, err)
		}
		if len(raw) < mineEventByteLen {
			return pool_entities.MiningEvent{}, fmt.Errorf("mine event: %w: payload too short (%d bytes)", errChainPermanent, len(raw))
		}

		return decodeMineEvent(raw), nil
	}

	return pool_entities.MiningEvent{}, fmt.Errorf("mine event: %w: no program return line found for %s", errChainPermanent, programID)
}

var errChainPermanent = common.NewErrInvalidInput("chain permanent: invalid program return data")

func decodeMineEvent(raw []byte) pool_entities.MiningEvent {
	off := 0
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(raw[off : off+8])
		off += 8
		return v
	}
	readU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(raw[off : off+4])
		off += 4
		return v
	}
	readI64 := func() int64 {
		return int64(readU64())
	}

	balance := readU64()
	difficulty := readU32()
	lastHashAt := readI64()
	timing := readI64()
	netReward := readU64()
	netBaseReward := readU64()
	netMinerBoostReward := readU64()
	netStakerBoostReward := readU64()

	return pool_entities.MiningEvent{
		Balance:              balance,
		Difficulty:           difficulty,
		LastHashAt:           lastHashAt,
		Timing:               timing,
		NetReward:            netReward,
		NetBaseReward:        netBaseReward,
		NetMinerBoostReward:  netMinerBoostReward,
		NetStakerBoostReward: netStakerBoostReward,
	}
}
