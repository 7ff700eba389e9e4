// Package controllers is the HTTP edge (C8): thin adapters from gorilla/mux
// requests onto the pool usecases, with no business logic of their own.
package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// PoolController wires every HTTP-reachable pool operation: registration,
// member/challenge/event reads, the contribution pipeline, on-demand
// balance commits, and the mine-event webhook.
type PoolController struct {
	addressQuery   pool_in.PoolQuery
	registerCmd    pool_in.MemberCommand
	memberQuery    pool_in.MemberQuery
	challengeQuery pool_in.ChallengeQuery
	eventQuery     pool_in.EventQuery
	contributeCmd  pool_in.ContributionCommand
	commitBalance  pool_in.CommitBalanceCommandHandler
	webhook        pool_in.WebhookCommandHandler
}

func NewPoolController(
	addressQuery pool_in.PoolQuery,
	registerCmd pool_in.MemberCommand,
	memberQuery pool_in.MemberQuery,
	challengeQuery pool_in.ChallengeQuery,
	eventQuery pool_in.EventQuery,
	contributeCmd pool_in.ContributionCommand,
	commitBalance pool_in.CommitBalanceCommandHandler,
	webhook pool_in.WebhookCommandHandler,
) *PoolController {
	return &PoolController{
		addressQuery:   addressQuery,
		registerCmd:    registerCmd,
		memberQuery:    memberQuery,
		challengeQuery: challengeQuery,
		eventQuery:     eventQuery,
		contributeCmd:  contributeCmd,
		commitBalance:  commitBalance,
		webhook:        webhook,
	}
}

// GetAddress handles GET /address.
func (c *PoolController) GetAddress(w http.ResponseWriter, r *http.Request) {
	view, err := c.addressQuery.Address(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressResponse{PoolAddress: view.PoolAddress, Bump: view.Bump})
}

type addressResponse struct {
	PoolAddress string `json:"pool_address"`
	Bump        uint8  `json:"bump"`
}

type registerRequest struct {
	Authority string `json:"authority"`
}

// Register handles POST /register.
func (c *PoolController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	authority, err := pool_vo.NewAuthority(req.Authority)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	member, err := c.registerCmd.GetOrRegister(r.Context(), authority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// GetMember handles GET /member/{authority}.
func (c *PoolController) GetMember(w http.ResponseWriter, r *http.Request) {
	authority, err := authorityFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	member, err := c.memberQuery.Get(r.Context(), authority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// GetChallenge handles GET /challenge/{authority}.
func (c *PoolController) GetChallenge(w http.ResponseWriter, r *http.Request) {
	authority, err := authorityFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	view, err := c.challengeQuery.CurrentChallenge(r.Context(), authority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeResponse(view))
}

// GetEvent handles GET /event/{authority}.
func (c *PoolController) GetEvent(w http.ResponseWriter, r *http.Request) {
	authority, err := authorityFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	view, err := c.eventQuery.LatestEvent(r.Context(), authority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(view))
}

type contributeRequest struct {
	Authority string `json:"authority"`
	Digest    string `json:"digest"`    // base64, 16 bytes
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"` // base64
}

// Contribute handles POST /contribute.
func (c *PoolController) Contribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	authority, err := pool_vo.NewAuthority(req.Authority)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	digest, err := base64.StdEncoding.DecodeString(req.Digest)
	if err != nil || len(digest) != pool_vo.DigestSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "digest must be 16 base64-encoded bytes"})
		return
	}
	var digestArray [pool_vo.DigestSize]byte
	copy(digestArray[:], digest)

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "signature must be base64-encoded"})
		return
	}

	cmd := pool_in.ContributeCommand{
		Authority: authority,
		Solution:  pool_vo.Solution{Digest: digestArray, Nonce: req.Nonce},
		Signature: signature,
	}

	if err := c.contributeCmd.Contribute(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

type commitBalanceRequest struct {
	Authority         string `json:"authority"`
	TransactionBase64 string `json:"transaction"`
	RecentBlockhash   string `json:"recent_blockhash"`
}

// CommitBalance handles POST /commit-balance.
func (c *PoolController) CommitBalance(w http.ResponseWriter, r *http.Request) {
	var req commitBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	authority, err := pool_vo.NewAuthority(req.Authority)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := c.commitBalance.CommitBalance(r.Context(), pool_in.CommitBalanceCommand{
		Authority:         authority,
		TransactionBase64: req.TransactionBase64,
		RecentBlockhash:   req.RecentBlockhash,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_balance": result.TotalBalance,
		"signature":     result.Signature,
	})
}

type webhookRequest struct {
	Signature   string   `json:"signature"`
	Slot        uint64   `json:"slot"`
	BlockTime   int64    `json:"blockTime"`
	LogMessages []string `json:"logMessages"`
}

// HandleMineEvent handles POST /webhook/mine-event.
func (c *PoolController) HandleMineEvent(w http.ResponseWriter, r *http.Request) {
	authToken := r.Header.Get("Authorization")

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := c.webhook.HandleMineEvent(r.Context(), pool_in.WebhookCommand{
		AuthToken:   authToken,
		Signature:   req.Signature,
		Slot:        req.Slot,
		BlockTime:   req.BlockTime,
		LogMessages: req.LogMessages,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func authorityFromPath(r *http.Request) (pool_vo.Authority, error) {
	raw := mux.Vars(r)["authority"]
	return pool_vo.NewAuthority(raw)
}

type memberResponse struct {
	Address      string `json:"address"`
	Authority    string `json:"authority"`
	TotalBalance uint64 `json:"total_balance"`
	IsApproved   bool   `json:"is_approved"`
	IsKYC        bool   `json:"is_kyc"`
	IsKicked     bool   `json:"is_kicked"`
	IsSynced     bool   `json:"is_synced"`
}

func toMemberResponse(m *pool_entities.Member) memberResponse {
	return memberResponse{
		Address:      m.Address,
		Authority:    m.Authority.String(),
		TotalBalance: m.TotalBalance,
		IsApproved:   m.IsApproved,
		IsKYC:        m.IsKYC,
		IsKicked:     m.IsKicked,
		IsSynced:     m.IsSynced,
	}
}

type challengeResponse struct {
	Digest          string `json:"challenge"`
	LastHashAt      int64  `json:"last_hash_at"`
	MinDifficulty   uint32 `json:"min_difficulty"`
	NumTotalMembers uint64 `json:"num_total_members"`
	DeviceID        uint32 `json:"device_id"`
	NumDevices      uint32 `json:"num_devices"`
}

func toChallengeResponse(v *pool_in.MemberChallengeView) challengeResponse {
	return challengeResponse{
		Digest:          base64.StdEncoding.EncodeToString(v.Challenge.Digest[:]),
		LastHashAt:      v.Challenge.LastHashAt,
		MinDifficulty:   v.Challenge.MinDifficulty,
		NumTotalMembers: v.NumTotalMembers,
		DeviceID:        v.DeviceID,
		NumDevices:      v.NumDevices,
	}
}

type eventResponse struct {
	Signature        string `json:"signature"`
	LastHashAt       int64  `json:"last_hash_at"`
	Balance          uint64 `json:"balance"`
	MemberReward     uint64 `json:"member_reward"`
	MemberDifficulty uint32 `json:"member_difficulty"`
}

func toEventResponse(v *pool_in.EventView) eventResponse {
	return eventResponse{
		Signature:        v.Event.Signature,
		LastHashAt:       v.Event.LastHashAt,
		Balance:          v.Event.RawMineEvent.Balance,
		MemberReward:     v.MemberReward,
		MemberDifficulty: v.MemberDifficulty,
	}
}
