package httpapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
)

// ---- fakes ----

type fakeUsers struct {
	regResp *models.User
	regErr  error

	loginResp *models.TokenPair
	loginErr  error

	refreshResp *models.TokenPair
	refreshErr  error

	logoutErr    error
	loggedOut    []string
	tokens       map[string]*models.User
	authErr      error
	lastRegister services.RegisterInput
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	f.lastRegister = in
	return f.regResp, f.regErr
}
func (f *fakeUsers) Login(ctx context.Context, in services.LoginInput) (*models.TokenPair, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUsers) Logout(ctx context.Context, userID int64, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, fmt.Sprintf("%d:%s", userID, refreshToken))
	return f.logoutErr
}
func (f *fakeUsers) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	u, ok := f.tokens[accessToken]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return u, nil
}

type fakePolicies struct {
	list    []models.PolicyStatus
	listErr error

	created   *models.Policy
	createErr error
	lastInput services.CreatePolicyInput

	detail *models.PolicyDetail
	getErr error

	signoff *models.Signoff
	signErr error

	lastUserID   int64
	lastPolicyID int64
}

func (f *fakePolicies) List(ctx context.Context, userID int64) ([]models.PolicyStatus, error) {
	f.lastUserID = userID
	return f.list, f.listErr
}
func (f *fakePolicies) Create(ctx context.Context, userID int64, in services.CreatePolicyInput) (*models.Policy, error) {
	f.lastUserID, f.lastInput = userID, in
	return f.created, f.createErr
}
func (f *fakePolicies) Get(ctx context.Context, userID, policyID int64) (*models.PolicyDetail, error) {
	f.lastUserID, f.lastPolicyID = userID, policyID
	return f.detail, f.getErr
}
func (f *fakePolicies) SignOff(ctx context.Context, userID, policyID int64) (*models.Signoff, error) {
	f.lastUserID, f.lastPolicyID = userID, policyID
	return f.signoff, f.signErr
}

type fakeFiles struct {
	upload    *models.UploadTarget
	uploadErr error
	lastIn    services.UploadInput

	completeErr error

	download    *models.DownloadTarget
	downloadErr error
}

func (f *fakeFiles) RequestUploadTarget(ctx context.Context, userID, policyID int64, in services.UploadInput) (*models.UploadTarget, error) {
	f.lastIn = in
	return f.upload, f.uploadErr
}
func (f *fakeFiles) CompleteUpload(ctx context.Context, userID, policyID int64) error {
	return f.completeErr
}
func (f *fakeFiles) RequestDownloadTarget(ctx context.Context, policyID int64) (*models.DownloadTarget, error) {
	return f.download, f.downloadErr
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errBoom = errors.New("boom")
