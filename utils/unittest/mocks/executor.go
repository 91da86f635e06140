package mocks

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v4"

	"github.com/AElfProject/AElf-sub008/engine/execution/state/delta"
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Methods understood by the KVExecutor.
const (
	MethodSet       = "set"
	MethodDelete    = "delete"
	MethodIncrement = "increment"
	MethodFail      = "fail"
	MethodEmit      = "emit"
	MethodSleep     = "sleep"
	MethodCrash     = "crash"
)

// ErrCrash is returned by the KVExecutor for crash transactions.
var ErrCrash = errors.New("executor crashed")

// Params are the msgpack encoded parameters of KVExecutor transactions.
type Params struct {
	Key      string
	Value    []byte
	Name     string
	Duration time.Duration
}

// KVExecutor is a deterministic transaction executor operating on plain keys.
// Unknown methods are business failures.
type KVExecutor struct{}

func NewKVExecutor() *KVExecutor {
	return &KVExecutor{}
}

func (e *KVExecutor) ExecuteTransaction(
	ctx context.Context,
	view *delta.View,
	header *chain.Header,
	tx *chain.Transaction,
) (*chain.ExecutionReturnSet, error) {
	var params Params
	if len(tx.Params) > 0 {
		err := msgpack.Unmarshal(tx.Params, &params)
		if err != nil {
			return failed(fmt.Sprintf("malformed params: %v", err)), nil
		}
	}

	switch tx.MethodName {
	case MethodSet:
		view.Set(params.Key, params.Value)
		return mined(nil), nil
	case MethodDelete:
		view.Delete(params.Key)
		return mined(nil), nil
	case MethodIncrement:
		current, err := view.Get(params.Key)
		if err != nil {
			return nil, fmt.Errorf("could not read counter: %w", err)
		}
		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, DecodeCounter(current)+1)
		view.Set(params.Key, next)
		return mined(next), nil
	case MethodFail:
		// writes of failed transactions are discarded
		view.Set(params.Key, params.Value)
		return failed("requested failure"), nil
	case MethodEmit:
		rs := mined(nil)
		rs.Logs = []chain.LogEvent{{
			Address:    tx.To,
			Name:       params.Name,
			Indexed:    [][]byte{[]byte(params.Key)},
			NonIndexed: params.Value,
		}}
		return rs, nil
	case MethodSleep:
		time.Sleep(params.Duration)
		return mined(nil), nil
	case MethodCrash:
		return nil, ErrCrash
	default:
		return failed(fmt.Sprintf("unknown method %q", tx.MethodName)), nil
	}
}

// DecodeCounter decodes a counter written by increment transactions. An unset
// counter is zero.
func DecodeCounter(value []byte) uint64 {
	if len(value) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(value)
}

func mined(value []byte) *chain.ExecutionReturnSet {
	return &chain.ExecutionReturnSet{
		Status:      chain.TransactionStatusMined,
		ReturnValue: value,
	}
}

func failed(reason string) *chain.ExecutionReturnSet {
	return &chain.ExecutionReturnSet{
		Status: chain.TransactionStatusFailed,
		Error:  reason,
	}
}

// Transaction builds a KVExecutor transaction. The nonce keeps otherwise equal
// transactions distinct.
func Transaction(from string, method string, params Params, nonce uint64) *chain.Transaction {
	encoded, err := msgpack.Marshal(params)
	if err != nil {
		panic(fmt.Sprintf("could not encode params: %v", err))
	}
	return &chain.Transaction{
		From:           from,
		To:             "kv",
		RefBlockHeight: nonce,
		MethodName:     method,
		Params:         encoded,
	}
}

func SetTransaction(from string, key string, value []byte, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodSet, Params{Key: key, Value: value}, nonce)
}

func IncrementTransaction(from string, key string, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodIncrement, Params{Key: key}, nonce)
}

func FailTransaction(from string, key string, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodFail, Params{Key: key, Value: []byte("discarded")}, nonce)
}

func EmitTransaction(from string, name string, key string, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodEmit, Params{Name: name, Key: key}, nonce)
}

func SleepTransaction(from string, d time.Duration, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodSleep, Params{Duration: d}, nonce)
}

func CrashTransaction(from string, nonce uint64) *chain.Transaction {
	return Transaction(from, MethodCrash, Params{}, nonce)
}
