package jupiter

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Transaction stages of a swap, in execution order.
const (
	StageSetup   = "setup"
	StageSwap    = "swap"
	StageCleanup = "cleanup"
)

// SwapResponse is the body returned by the swap endpoint. Each transaction is
// a base64 serialized, partially signed transaction.
type SwapResponse struct {
	SetupTransaction   *string `json:"setupTransaction,omitempty"`
	SwapTransaction    *string `json:"swapTransaction"`
	CleanupTransaction *string `json:"cleanupTransaction,omitempty"`
}

// Swap holds the decoded transactions of a swap. Swap is always set; Setup and
// Cleanup are nil when the service did not send them.
type Swap struct {
	Setup   *solana.Transaction
	Swap    *solana.Transaction
	Cleanup *solana.Transaction
}

// Transactions returns the present transactions in execution order.
func (s *Swap) Transactions() []*solana.Transaction {
	out := make([]*solana.Transaction, 0, 3)
	for _, tx := range []*solana.Transaction{s.Setup, s.Swap, s.Cleanup} {
		if tx != nil {
			out = append(out, tx)
		}
	}
	return out
}

// DecodeSwap decodes every transaction in resp. All stages are attempted;
// when several fail, the errors are joined in stage order.
func DecodeSwap(resp SwapResponse) (*Swap, error) {
	var (
		out  Swap
		errs []error
		err  error
	)

	if resp.SetupTransaction != nil {
		if out.Setup, err = DecodeTransaction(StageSetup, *resp.SetupTransaction); err != nil {
			errs = append(errs, err)
		}
	}

	if resp.SwapTransaction == nil || strings.TrimSpace(*resp.SwapTransaction) == "" {
		errs = append(errs, &DecodeError{Op: OpSwap, Stage: StageSwap, Err: ErrMissingSwapTransaction})
	} else if out.Swap, err = DecodeTransaction(StageSwap, *resp.SwapTransaction); err != nil {
		errs = append(errs, err)
	}

	if resp.CleanupTransaction != nil {
		if out.Cleanup, err = DecodeTransaction(StageCleanup, *resp.CleanupTransaction); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &out, nil
}

// DecodeTransaction turns one base64 blob into a transaction. stage only
// labels errors.
func DecodeTransaction(stage, b64 string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, &DecodeError{Op: OpSwap, Stage: stage + ":base64", Err: err}
	}
	if len(raw) == 0 {
		return nil, &DecodeError{Op: OpSwap, Stage: stage + ":binary", Err: fmt.Errorf("empty transaction")}
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, &DecodeError{Op: OpSwap, Stage: stage + ":binary", Err: err}
	}
	return tx, nil
}

// EncodeTransaction serializes tx the way the swap endpoint sends it.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	b, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
