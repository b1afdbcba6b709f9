package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(fetcher TransactionFetcher) PaymentVerifier {
	return NewSolanaVerifier(fetcher, config.SolanaConfig{USDCMint: testMint}, testTreasury)
}

func TestSolanaVerifier(t *testing.T) {
	failedMeta := usdcTransfer(testTreasury, 5)
	failedMeta.Meta.Err = json.RawMessage(`{"InstructionError":[0,"Custom"]}`)

	tests := []struct {
		name     string
		fetcher  *fakeFetcher
		amount   float64
		want     bool
		wantKind common.Kind
		wantErr  bool
	}{
		{"exact amount", &fakeFetcher{tx: usdcTransfer(testTreasury, 0.01)}, 0.01, true, 0, false},
		{"rounding tolerance", &fakeFetcher{tx: usdcTransfer(testTreasury, 0.0099995)}, 0.01, true, 0, false},
		{"too small", &fakeFetcher{tx: usdcTransfer(testTreasury, 0.005)}, 0.01, false, 0, false},
		{"large balance tiny transfer", &fakeFetcher{tx: usdcTransferInto(testTreasury, 100, 100.001)}, 1, false, 0, false},
		{"existing account full transfer", &fakeFetcher{tx: usdcTransferInto(testTreasury, 100, 101)}, 1, true, 0, false},
		{"new token account", &fakeFetcher{tx: usdcTransfer(testTreasury, 1)}, 1, true, 0, false},
		{"wrong owner", &fakeFetcher{tx: usdcTransfer("someone-else", 10)}, 0.01, false, 0, false},
		{"not found", &fakeFetcher{}, 0.01, false, 0, false},
		{"failed on chain", &fakeFetcher{tx: failedMeta}, 0.01, false, 0, false},
		{"rpc rejects", &fakeFetcher{err: &solana.RPCError{Code: -32602, Message: "invalid signature"}}, 0.01, false, 0, false},
		{"transport error", &fakeFetcher{err: errors.New("connection refused")}, 0.01, false, common.KindExternalService, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := newTestVerifier(tt.fetcher).Verify(context.Background(), "sig", tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, common.IsKind(err, tt.wantKind))
				assert.ErrorIs(t, err, common.ErrPaymentVerifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSolanaVerifier_WrongMint(t *testing.T) {
	tx := usdcTransfer(testTreasury, 10)
	tx.Meta.PostTokenBalances[0].Mint = "OtherMint"
	ok, err := newTestVerifier(&fakeFetcher{tx: tx}).Verify(context.Background(), "sig", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSolanaVerifier_DelayHonoursContext(t *testing.T) {
	v := NewSolanaVerifier(&fakeFetcher{tx: usdcTransfer(testTreasury, 1)},
		config.SolanaConfig{USDCMint: testMint, ConfirmationDelay: time.Hour}, testTreasury)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := v.Verify(ctx, "sig", 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

type paymentFixture struct {
	verifier *mockVerifier
	receipts repository.PaymentRepository
	mods     ModerationService
	svc      PaymentService
}

func newPaymentFixture(t *testing.T, board config.BoardConfig) *paymentFixture {
	db := setupTestDB(t)
	f := &paymentFixture{
		verifier: new(mockVerifier),
		receipts: repository.NewPaymentRepository(db),
		mods:     NewModerationService(repository.NewModRepository(db), board.AdminWallet),
	}
	f.svc = NewPaymentService(f.verifier, f.receipts, f.mods, board, testMint)
	return f
}

func TestQuote(t *testing.T) {
	f := newPaymentFixture(t, testBoard())
	ctx := context.Background()

	quote, err := f.svc.Quote(ctx, "wallet-1", domain.PaymentPurposeThread)
	require.NoError(t, err)
	assert.False(t, quote.Exempt)
	assert.Equal(t, 0.01, quote.Amount)
	assert.Equal(t, testTreasury, quote.Treasury)
	assert.Equal(t, testMint, quote.Mint)

	quote, err = f.svc.Quote(ctx, testAdmin, domain.PaymentPurposeReply)
	require.NoError(t, err)
	assert.True(t, quote.Exempt)
}

func TestCharge(t *testing.T) {
	ctx := context.Background()

	t.Run("exempt wallet pays nothing", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		_, err := f.mods.AddMod(ctx, testAdmin, "mod-wallet")
		require.NoError(t, err)

		sig, err := f.svc.Charge(ctx, "mod-wallet", "", domain.PaymentPurposeThread)
		require.NoError(t, err)
		assert.Empty(t, sig)
		f.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment disabled", func(t *testing.T) {
		board := testBoard()
		board.RequirePayment = false
		f := newPaymentFixture(t, board)
		sig, err := f.svc.Charge(ctx, "wallet", "", domain.PaymentPurposeThread)
		require.NoError(t, err)
		assert.Empty(t, sig)
	})

	t.Run("missing signature", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		_, err := f.svc.Charge(ctx, "wallet", " ", domain.PaymentPurposeThread)
		assert.ErrorIs(t, err, common.ErrPaymentRequired)
		assert.Equal(t, 402, common.StatusFor(err))
	})

	t.Run("not verified", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		f.verifier.On("Verify", mock.Anything, "sig-1", 0.01).Return(false, nil)
		_, err := f.svc.Charge(ctx, "wallet", "sig-1", domain.PaymentPurposeReply)
		assert.ErrorIs(t, err, common.ErrPaymentNotVerified)

		used, err := f.receipts.IsUsed(ctx, "sig-1")
		require.NoError(t, err)
		assert.False(t, used)
	})

	t.Run("signature claimed once", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		f.verifier.On("Verify", mock.Anything, "sig-2", 0.01).Return(true, nil).Once()

		sig, err := f.svc.Charge(ctx, "wallet", "sig-2", domain.PaymentPurposeThread)
		require.NoError(t, err)
		assert.Equal(t, "sig-2", sig)

		_, err = f.svc.Charge(ctx, "wallet", "sig-2", domain.PaymentPurposeReply)
		assert.ErrorIs(t, err, common.ErrSignatureUsed)
		f.verifier.AssertExpectations(t)
	})

	t.Run("release frees the signature", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		f.verifier.On("Verify", mock.Anything, "sig-3", 0.01).Return(true, nil)

		sig, err := f.svc.Charge(ctx, "wallet", "sig-3", domain.PaymentPurposeThread)
		require.NoError(t, err)
		f.svc.Release(ctx, sig)

		sig, err = f.svc.Charge(ctx, "wallet", "sig-3", domain.PaymentPurposeThread)
		require.NoError(t, err)
		f.svc.Settle(ctx, sig, "thread-1")
		used, err := f.receipts.IsUsed(ctx, "sig-3")
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("verifier outage", func(t *testing.T) {
		f := newPaymentFixture(t, testBoard())
		outage := common.E(common.KindExternalService, "get transaction", common.ErrPaymentVerifier)
		f.verifier.On("Verify", mock.Anything, "sig-4", 0.01).Return(false, outage)
		_, err := f.svc.Charge(ctx, "wallet", "sig-4", domain.PaymentPurposeThread)
		assert.Equal(t, 502, common.StatusFor(err))
	})
}

func TestVerifyPayment(t *testing.T) {
	f := newPaymentFixture(t, testBoard())
	ctx := context.Background()

	_, err := f.svc.Verify(ctx, "", 1)
	assert.True(t, common.IsKind(err, common.KindValidation))

	f.verifier.On("Verify", mock.Anything, "sig", 0.01).Return(true, nil)
	res, err := f.svc.Verify(ctx, "sig", 0)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, 0.01, res.Amount)
}
