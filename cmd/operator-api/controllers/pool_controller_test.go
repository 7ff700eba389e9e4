package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

const testAuthority = "2wwr3BteoVoYbZ7Q89RXNu4q2tkiw75Bveco7nAemt3j"

type stubPoolQuery struct {
	view *pool_in.AddressView
	err  error
}

func (s *stubPoolQuery) Address(context.Context) (*pool_in.AddressView, error) { return s.view, s.err }

type stubMemberCommand struct {
	member *pool_entities.Member
	err    error
}

func (s *stubMemberCommand) GetOrRegister(context.Context, pool_vo.Authority) (*pool_entities.Member, error) {
	return s.member, s.err
}

type stubMemberQuery struct {
	member *pool_entities.Member
	err    error
}

func (s *stubMemberQuery) Get(context.Context, pool_vo.Authority) (*pool_entities.Member, error) {
	return s.member, s.err
}

type stubChallengeQuery struct {
	view *pool_in.MemberChallengeView
	err  error
}

func (s *stubChallengeQuery) CurrentChallenge(context.Context, pool_vo.Authority) (*pool_in.MemberChallengeView, error) {
	return s.view, s.err
}

type stubEventQuery struct {
	view *pool_in.EventView
	err  error
}

func (s *stubEventQuery) LatestEvent(context.Context, pool_vo.Authority) (*pool_in.EventView, error) {
	return s.view, s.err
}

type stubContributionCommand struct {
	received pool_in.ContributeCommand
	err      error
}

func (s *stubContributionCommand) Contribute(_ context.Context, cmd pool_in.ContributeCommand) error {
	s.received = cmd
	return s.err
}

type stubCommitBalanceHandler struct {
	result *pool_in.CommitBalanceResult
	err    error
}

func (s *stubCommitBalanceHandler) CommitBalance(context.Context, pool_in.CommitBalanceCommand) (*pool_in.CommitBalanceResult, error) {
	return s.result, s.err
}

type stubWebhookHandler struct {
	received pool_in.WebhookCommand
	err      error
}

func (s *stubWebhookHandler) HandleMineEvent(_ context.Context, cmd pool_in.WebhookCommand) error {
	s.received = cmd
	return s.err
}

func newTestController(address pool_in.PoolQuery, register pool_in.MemberCommand, member pool_in.MemberQuery,
	challenge pool_in.ChallengeQuery, event pool_in.EventQuery, contribute pool_in.ContributionCommand,
	commit pool_in.CommitBalanceCommandHandler, webhook pool_in.WebhookCommandHandler) *PoolController {
	return NewPoolController(address, register, member, challenge, event, contribute, commit, webhook)
}

func withAuthorityVar(r *http.Request, authority string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"authority": authority})
}

func TestGetAddress_Success(t *testing.T) {
	c := newTestController(&stubPoolQuery{view: &pool_in.AddressView{PoolAddress: "pool-pda", Bump: 254}},
		nil, nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/address", nil)
	rec := httptest.NewRecorder()

	c.GetAddress(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp addressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pool-pda", resp.PoolAddress)
	assert.Equal(t, uint8(254), resp.Bump)
}

func TestGetAddress_UpstreamError_MapsToInternalError(t *testing.T) {
	c := newTestController(&stubPoolQuery{err: assert.AnError}, nil, nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/address", nil)
	rec := httptest.NewRecorder()

	c.GetAddress(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegister_Success(t *testing.T) {
	c := newTestController(nil, &stubMemberCommand{member: &pool_entities.Member{Authority: pool_vo.Authority(testAuthority), IsApproved: false}},
		nil, nil, nil, nil, nil, nil)

	body, _ := json.Marshal(registerRequest{Authority: testAuthority})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp memberResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testAuthority, resp.Authority)
}

func TestRegister_InvalidAuthority_BadRequest(t *testing.T) {
	c := newTestController(nil, &stubMemberCommand{}, nil, nil, nil, nil, nil, nil)

	body, _ := json.Marshal(registerRequest{Authority: "not-base58-!!"})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_UnknownMember_NotFound(t *testing.T) {
	c := newTestController(nil, &stubMemberCommand{err: common.NewErrNotFound(common.ResourceTypeMember, "authority", testAuthority)},
		nil, nil, nil, nil, nil, nil)

	body, _ := json.Marshal(registerRequest{Authority: testAuthority})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Register(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMember_Success(t *testing.T) {
	c := newTestController(nil, nil, &stubMemberQuery{member: &pool_entities.Member{Authority: pool_vo.Authority(testAuthority), TotalBalance: 42}},
		nil, nil, nil, nil, nil)

	req := withAuthorityVar(httptest.NewRequest(http.MethodGet, "/member/"+testAuthority, nil), testAuthority)
	rec := httptest.NewRecorder()

	c.GetMember(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp memberResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.TotalBalance)
}

func TestGetMember_InvalidAuthorityInPath_BadRequest(t *testing.T) {
	c := newTestController(nil, nil, &stubMemberQuery{}, nil, nil, nil, nil, nil)

	req := withAuthorityVar(httptest.NewRequest(http.MethodGet, "/member/bad", nil), "not-base58-!!")
	rec := httptest.NewRecorder()

	c.GetMember(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChallenge_Success(t *testing.T) {
	view := &pool_in.MemberChallengeView{
		Challenge:       pool_entities.Challenge{LastHashAt: 100, MinDifficulty: 7},
		NumTotalMembers: 3,
		DeviceID:        1,
		NumDevices:      5,
	}
	c := newTestController(nil, nil, nil, &stubChallengeQuery{view: view}, nil, nil, nil, nil)

	req := withAuthorityVar(httptest.NewRequest(http.MethodGet, "/challenge/"+testAuthority, nil), testAuthority)
	rec := httptest.NewRecorder()

	c.GetChallenge(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp challengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.LastHashAt)
	assert.Equal(t, uint32(7), resp.MinDifficulty)
}

func TestGetEvent_NotFound(t *testing.T) {
	c := newTestController(nil, nil, nil, nil, &stubEventQuery{err: common.NewErrNotFound(common.ResourceTypeMiningEvent, "authority", testAuthority)}, nil, nil, nil)

	req := withAuthorityVar(httptest.NewRequest(http.MethodGet, "/event/"+testAuthority, nil), testAuthority)
	rec := httptest.NewRecorder()

	c.GetEvent(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContribute_Success(t *testing.T) {
	contribCmd := &stubContributionCommand{}
	c := newTestController(nil, nil, nil, nil, nil, contribCmd, nil, nil)

	digest := base64.StdEncoding.EncodeToString(make([]byte, pool_vo.DigestSize))
	body, _ := json.Marshal(contributeRequest{
		Authority: testAuthority,
		Digest:    digest,
		Nonce:     7,
		Signature: base64.StdEncoding.EncodeToString([]byte("sig")),
	})
	req := httptest.NewRequest(http.MethodPost, "/contribute", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Contribute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), contribCmd.received.Solution.Nonce)
}

func TestContribute_WrongDigestLength_BadRequest(t *testing.T) {
	c := newTestController(nil, nil, nil, nil, nil, &stubContributionCommand{}, nil, nil)

	body, _ := json.Marshal(contributeRequest{
		Authority: testAuthority,
		Digest:    base64.StdEncoding.EncodeToString([]byte("too-short")),
		Signature: base64.StdEncoding.EncodeToString([]byte("sig")),
	})
	req := httptest.NewRequest(http.MethodPost, "/contribute", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Contribute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContribute_InvalidSignatureUnauthorized(t *testing.T) {
	c := newTestController(nil, nil, nil, nil, nil, &stubContributionCommand{err: common.NewErrUnauthorized()}, nil, nil)

	digest := base64.StdEncoding.EncodeToString(make([]byte, pool_vo.DigestSize))
	body, _ := json.Marshal(contributeRequest{
		Authority: testAuthority,
		Digest:    digest,
		Signature: base64.StdEncoding.EncodeToString([]byte("sig")),
	})
	req := httptest.NewRequest(http.MethodPost, "/contribute", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.Contribute(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCommitBalance_Success(t *testing.T) {
	c := newTestController(nil, nil, nil, nil, nil, nil, &stubCommitBalanceHandler{result: &pool_in.CommitBalanceResult{TotalBalance: 999, Signature: "sig"}}, nil)

	body, _ := json.Marshal(commitBalanceRequest{Authority: testAuthority, TransactionBase64: "tx", RecentBlockhash: "bh"})
	req := httptest.NewRequest(http.MethodPost, "/commit-balance", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	c.CommitBalance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 999, resp["total_balance"])
}

func TestHandleMineEvent_ForwardsAuthHeaderAndBody(t *testing.T) {
	webhook := &stubWebhookHandler{}
	c := newTestController(nil, nil, nil, nil, nil, nil, nil, webhook)

	body, _ := json.Marshal(webhookRequest{Signature: "sig", Slot: 5, LogMessages: []string{"line"}})
	req := httptest.NewRequest(http.MethodPost, "/webhook/mine-event", bytes.NewReader(body))
	req.Header.Set("Authorization", "secret-token")
	rec := httptest.NewRecorder()

	c.HandleMineEvent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "secret-token", webhook.received.AuthToken)
	assert.Equal(t, "sig", webhook.received.Signature)
}
