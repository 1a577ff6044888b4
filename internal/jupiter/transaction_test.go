package jupiter

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSignedTransfer builds a signed single-instruction system transfer.
func newSignedTransfer(t *testing.T, lamports uint64) *solana.Transaction {
	t.Helper()

	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	to := solana.NewWallet().PublicKey()

	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	ix := solana.NewInstruction(solana.SystemProgramID, []*solana.AccountMeta{
		{PublicKey: payer.PublicKey(), IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: false, IsWritable: true},
	}, data)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1, 2, 3}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func encodeTx(t *testing.T, tx *solana.Transaction) *string {
	t.Helper()
	s, err := EncodeTransaction(tx)
	require.NoError(t, err)
	return &s
}

func assertSameTx(t *testing.T, want, got *solana.Transaction) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Signatures, got.Signatures)
	assert.Equal(t, want.Message.RecentBlockhash, got.Message.RecentBlockhash)
	assert.Equal(t, want.Message.AccountKeys, got.Message.AccountKeys)
	require.Len(t, got.Message.Instructions, len(want.Message.Instructions))
	assert.Equal(t, want.Message.Instructions[0].Data, got.Message.Instructions[0].Data)
}

func TestDecodeSwap_AllStages(t *testing.T) {
	setup, swap, cleanup := newSignedTransfer(t, 1), newSignedTransfer(t, 2), newSignedTransfer(t, 3)

	out, err := DecodeSwap(SwapResponse{
		SetupTransaction:   encodeTx(t, setup),
		SwapTransaction:    encodeTx(t, swap),
		CleanupTransaction: encodeTx(t, cleanup),
	})
	require.NoError(t, err)

	assertSameTx(t, setup, out.Setup)
	assertSameTx(t, swap, out.Swap)
	assertSameTx(t, cleanup, out.Cleanup)
	assert.Len(t, out.Transactions(), 3)
}

func TestDecodeSwap_OnlySwap(t *testing.T) {
	swap := newSignedTransfer(t, 10)

	out, err := DecodeSwap(SwapResponse{SwapTransaction: encodeTx(t, swap)})
	require.NoError(t, err)

	assert.Nil(t, out.Setup)
	assert.Nil(t, out.Cleanup)
	assertSameTx(t, swap, out.Swap)
	assert.Len(t, out.Transactions(), 1)
}

func TestDecodeSwap_MissingSwap(t *testing.T) {
	setup := newSignedTransfer(t, 1)
	empty := "  "

	for name, resp := range map[string]SwapResponse{
		"absent":     {SetupTransaction: encodeTx(t, setup)},
		"blank":      {SwapTransaction: &empty},
		"zero value": {},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := DecodeSwap(resp)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrMissingSwapTransaction))

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, StageSwap, decErr.Stage)
		})
	}
}

func TestDecodeSwap_StageTaggedErrors(t *testing.T) {
	swap := newSignedTransfer(t, 1)
	badBase64 := "%%% not base64 %%%"
	truncated := base64.StdEncoding.EncodeToString([]byte{0x02, 0x01})

	_, err := DecodeSwap(SwapResponse{SetupTransaction: &badBase64, SwapTransaction: encodeTx(t, swap)})
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "setup:base64", decErr.Stage)

	_, err = DecodeSwap(SwapResponse{SwapTransaction: encodeTx(t, swap), CleanupTransaction: &truncated})
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "cleanup:binary", decErr.Stage)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeSwap_ReportsEveryFailedStage(t *testing.T) {
	bad := "!!"
	truncated := base64.StdEncoding.EncodeToString([]byte{0x05})

	_, err := DecodeSwap(SwapResponse{
		SetupTransaction:   &bad,
		SwapTransaction:    &truncated,
		CleanupTransaction: &bad,
	})
	require.Error(t, err)

	// errors.As finds the earliest stage first.
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "setup:base64", decErr.Stage)

	msg := err.Error()
	assert.Contains(t, msg, "setup:base64")
	assert.Contains(t, msg, "swap:binary")
	assert.Contains(t, msg, "cleanup:base64")
}

func TestDecodeTransaction_Empty(t *testing.T) {
	_, err := DecodeTransaction(StageSwap, "")
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "swap:binary", decErr.Stage)
}
