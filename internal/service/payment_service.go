package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/VAIIYA/DISCHAN/pkg/metrics"
	"github.com/VAIIYA/DISCHAN/pkg/solana"
	"gorm.io/gorm"
)

// amountTolerance absorbs float rounding of uiAmount
const amountTolerance = 1e-6

// PaymentVerifier confirms an on-chain stablecoin transfer to the treasury.
// A transfer that is missing, failed or too small is (false, nil); only a
// transport failure is an error.
type PaymentVerifier interface {
	Verify(ctx context.Context, signature string, amount float64) (bool, error)
}

// TransactionFetcher is the part of the RPC client the verifier uses
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// solanaVerifier checks how much USDC a confirmed transaction moved into
// the treasury's token account
type solanaVerifier struct {
	rpc      TransactionFetcher
	mint     string
	treasury string
	delay    time.Duration
}

// NewSolanaVerifier creates a PaymentVerifier backed by a Solana RPC node
func NewSolanaVerifier(rpc TransactionFetcher, cfg config.SolanaConfig, treasury string) PaymentVerifier {
	return &solanaVerifier{rpc: rpc, mint: cfg.USDCMint, treasury: treasury, delay: cfg.ConfirmationDelay}
}

func (v *solanaVerifier) Verify(ctx context.Context, signature string, amount float64) (bool, error) {
	// give the cluster time to confirm before asking
	if v.delay > 0 {
		timer := time.NewTimer(v.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	tx, err := v.rpc.GetTransaction(ctx, signature)
	if err != nil {
		var rpcErr *solana.RPCError
		if errors.As(err, &rpcErr) {
			// the node rejected the request (e.g. malformed signature)
			pkglogger.GetLogger().Warn().Err(err).Str("signature", signature).Msg("transaction lookup rejected")
			return false, nil
		}
		return false, common.E(common.KindExternalService, "get transaction", fmt.Errorf("%w: %v", common.ErrPaymentVerifier, err))
	}
	if tx == nil || tx.Meta == nil || tx.Meta.Failed() {
		return false, nil
	}

	for _, bal := range tx.Meta.PostTokenBalances {
		if bal.Mint != v.mint || bal.Owner != v.treasury || bal.UITokenAmount.UIAmount == nil {
			continue
		}
		received := *bal.UITokenAmount.UIAmount - preBalance(tx.Meta.PreTokenBalances, bal.AccountIndex, v.mint)
		if received >= amount-amountTolerance {
			return true, nil
		}
	}
	return false, nil
}

// preBalance returns the pre-transaction amount of one token account.
// An account created by the transaction has no entry and starts at zero.
func preBalance(pre []solana.TokenBalance, accountIndex int, mint string) float64 {
	for _, bal := range pre {
		if bal.AccountIndex == accountIndex && bal.Mint == mint && bal.UITokenAmount.UIAmount != nil {
			return *bal.UITokenAmount.UIAmount
		}
	}
	return 0
}

// PaymentService quotes posting fees and gates paid operations
type PaymentService interface {
	Quote(ctx context.Context, wallet string, purpose domain.PaymentPurpose) (*domain.FeeQuote, error)
	Verify(ctx context.Context, signature string, amount float64) (*domain.VerifyResult, error)
	// Charge claims a verified, unused signature for a post. It returns the
	// claimed signature ("" when the wallet is exempt or payment is off).
	Charge(ctx context.Context, wallet, signature string, purpose domain.PaymentPurpose) (string, error)
	Settle(ctx context.Context, signature, refID string)
	Release(ctx context.Context, signature string)
}

type paymentService struct {
	verifier PaymentVerifier
	receipts repository.PaymentRepository
	mods     ModerationService
	board    config.BoardConfig
	mint     string
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(verifier PaymentVerifier, receipts repository.PaymentRepository, mods ModerationService, board config.BoardConfig, mint string) PaymentService {
	return &paymentService{verifier: verifier, receipts: receipts, mods: mods, board: board, mint: mint}
}

func (s *paymentService) fee(purpose domain.PaymentPurpose) float64 {
	if purpose == domain.PaymentPurposeReply {
		return s.board.ReplyFee
	}
	return s.board.ThreadFee
}

// Quote 수수료 안내
func (s *paymentService) Quote(ctx context.Context, wallet string, purpose domain.PaymentPurpose) (*domain.FeeQuote, error) {
	exempt, err := s.mods.IsExempt(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("check exemption: %w", err)
	}
	if exempt {
		return &domain.FeeQuote{Exempt: true}, nil
	}
	return &domain.FeeQuote{
		Exempt:   false,
		Amount:   s.fee(purpose),
		Treasury: s.board.TreasuryWallet,
		Mint:     s.mint,
	}, nil
}

// Verify 결제 서명 검증 (기록하지 않음)
func (s *paymentService) Verify(ctx context.Context, signature string, amount float64) (*domain.VerifyResult, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return nil, common.Validation("verify payment", "signature is required")
	}
	if amount <= 0 {
		amount = s.board.ThreadFee
	}
	ok, err := s.verifier.Verify(ctx, signature, amount)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PaymentVerifications.WithLabelValues(verifiedLabel(ok)).Inc()
	return &domain.VerifyResult{Verified: ok, Signature: signature, Amount: amount}, nil
}

// Charge 결제 확인 후 서명을 선점
func (s *paymentService) Charge(ctx context.Context, wallet, signature string, purpose domain.PaymentPurpose) (string, error) {
	if !s.board.RequirePayment {
		return "", nil
	}
	exempt, err := s.mods.IsExempt(ctx, wallet)
	if err != nil {
		return "", fmt.Errorf("check exemption: %w", err)
	}
	if exempt {
		return "", nil
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return "", common.ErrPaymentRequired
	}
	used, err := s.receipts.IsUsed(ctx, signature)
	if err != nil {
		return "", common.E(common.KindPersistence, "check signature", err)
	}
	if used {
		return "", common.ErrSignatureUsed
	}

	amount := s.fee(purpose)
	ok, err := s.verifier.Verify(ctx, signature, amount)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.PaymentVerifications.WithLabelValues(verifiedLabel(ok)).Inc()
	if !ok {
		return "", common.ErrPaymentNotVerified
	}

	err = s.receipts.Record(ctx, &domain.PaymentReceipt{
		Signature: signature,
		Purpose:   purpose,
		Wallet:    wallet,
		Amount:    amount,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", common.ErrSignatureUsed
	}
	if err != nil {
		return "", common.E(common.KindPersistence, "record payment", err)
	}
	return signature, nil
}

// Settle links a claimed signature to what it paid for
func (s *paymentService) Settle(ctx context.Context, signature, refID string) {
	if signature == "" {
		return
	}
	if err := s.receipts.AttachRef(ctx, signature, refID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("signature", signature).Msg("failed to attach payment ref")
	}
}

// Release frees a claimed signature after the paid write failed
func (s *paymentService) Release(ctx context.Context, signature string) {
	if signature == "" {
		return
	}
	if err := s.receipts.Release(ctx, signature); err != nil {
		pkglogger.GetLogger().Error().Err(err).Str("signature", signature).Msg("failed to release payment signature")
	}
}

func verifiedLabel(ok bool) string {
	if ok {
		return "verified"
	}
	return "not_verified"
}
