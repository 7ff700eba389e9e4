package pool_entities

// MiningEvent is the decoded `Program return` payload the pool program
// emits when a submit() transaction lands, giving the operator the
// authoritative reward figures to attribute out to contributors.
type MiningEvent struct {
	Balance              uint64
	Difficulty            uint32
	LastHashAt            int64
	Timing                int64
	NetReward             uint64
	NetBaseReward         uint64
	NetMinerBoostReward   uint64
	NetStakerBoostReward  uint64
}

// OperatorShare is the operator's cut of the net reward, at commission
// percent. Integer division truncates the operator's cut; the fractional
// part stays in Distributable.
func (e MiningEvent) OperatorShare(commissionPercent uint8) uint64 {
	return e.NetReward * uint64(commissionPercent) / 100
}

// Distributable is what remains to be split across contributors after
// the operator's commission is taken.
func (e MiningEvent) Distributable(commissionPercent uint8) uint64 {
	return e.NetReward - e.OperatorShare(commissionPercent)
}
