package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// gasLimit matches the deployment scripts the contract ships with.
const gasLimit = 500000

// contractABI is the lifecycle surface of the deployed registry contract.
const contractABI = `[
  {"type":"function","name":"createRequest","stateMutability":"nonpayable","inputs":[{"name":"clientUserId","type":"string"},{"name":"contentHash","type":"string"},{"name":"description","type":"string"}],"outputs":[]},
  {"type":"function","name":"assignRequest","stateMutability":"nonpayable","inputs":[{"name":"requestId","type":"string"},{"name":"officerUserId","type":"string"}],"outputs":[]},
  {"type":"function","name":"submitResponse","stateMutability":"nonpayable","inputs":[{"name":"requestId","type":"string"},{"name":"officerUserId","type":"string"},{"name":"responseHash","type":"string"}],"outputs":[]},
  {"type":"event","name":"RequestCreated","anonymous":false,"inputs":[{"name":"requestId","type":"string","indexed":false},{"name":"clientUserId","type":"string","indexed":false},{"name":"contentHash","type":"string","indexed":false},{"name":"description","type":"string","indexed":false}]},
  {"type":"event","name":"RequestAssigned","anonymous":false,"inputs":[{"name":"requestId","type":"string","indexed":false},{"name":"officerUserId","type":"string","indexed":false}]},
  {"type":"event","name":"ResponseSubmitted","anonymous":false,"inputs":[{"name":"requestId","type":"string","indexed":false},{"name":"officerUserId","type":"string","indexed":false},{"name":"responseHash","type":"string","indexed":false}]}
]`

// EthereumGateway signs and submits registry calls against a deployed
// contract. It also implements EventReader by filtering the contract's logs,
// which is what the reconciler replays.
type EthereumGateway struct {
	client   *ethclient.Client
	contract common.Address
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
}

// NewEthereumGateway dials rpcURL and prepares the signing account.
// privateKeyHex may carry a 0x prefix.
func NewEthereumGateway(ctx context.Context, rpcURL, contractHex, privateKeyHex string) (*EthereumGateway, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger node: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &EthereumGateway{
		client:   client,
		contract: common.HexToAddress(contractHex),
		abi:      parsed,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
	}, nil
}

// Submit encodes, signs and sends a call, then waits for it to be mined.
func (g *EthereumGateway) Submit(ctx context.Context, call Call) (*Receipt, error) {
	data, err := g.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", call.Method, err)
	}
	nonce, err := g.client.PendingNonceAt(ctx, g.from)
	if err != nil {
		return nil, fmt.Errorf("query nonce: %w", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("query gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, g.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", call.Method, err)
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send %s: %w", call.Method, err)
	}
	mined, err := bind.WaitMined(ctx, g.client, signed)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", signed.Hash().Hex(), err)
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}
	receipt := &Receipt{TxHash: signed.Hash().Hex()}
	for _, lg := range mined.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != g.abi.Events["RequestCreated"].ID {
			continue
		}
		vals, err := g.abi.Unpack("RequestCreated", lg.Data)
		if err != nil {
			return nil, fmt.Errorf("decode RequestCreated: %w", err)
		}
		if id, ok := vals[0].(string); ok {
			receipt.RequestID = id
		}
	}
	return receipt, nil
}

// Events reads every lifecycle event the contract has emitted, in log order.
func (g *EthereumGateway) Events(ctx context.Context) ([]Event, error) {
	logs, err := g.client.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{g.contract},
	})
	if err != nil {
		return nil, fmt.Errorf("filter contract logs: %w", err)
	}
	blockTimes := make(map[uint64]time.Time)
	var events []Event
	for _, lg := range logs {
		if len(lg.Topics) == 0 {
			continue
		}
		at, err := g.blockTime(ctx, lg.BlockNumber, blockTimes)
		if err != nil {
			return nil, err
		}
		switch lg.Topics[0] {
		case g.abi.Events["RequestCreated"].ID:
			vals, err := g.abi.Unpack("RequestCreated", lg.Data)
			if err != nil {
				return nil, fmt.Errorf("decode RequestCreated: %w", err)
			}
			events = append(events, Event{
				Kind:         EventCreated,
				RequestID:    vals[0].(string),
				ClientUserID: vals[1].(string),
				ContentID:    vals[2].(string),
				Description:  vals[3].(string),
				TxHash:       lg.TxHash.Hex(),
				At:           at,
			})
		case g.abi.Events["RequestAssigned"].ID:
			vals, err := g.abi.Unpack("RequestAssigned", lg.Data)
			if err != nil {
				return nil, fmt.Errorf("decode RequestAssigned: %w", err)
			}
			events = append(events, Event{
				Kind:          EventAssigned,
				RequestID:     vals[0].(string),
				OfficerUserID: vals[1].(string),
				TxHash:        lg.TxHash.Hex(),
				At:            at,
			})
		case g.abi.Events["ResponseSubmitted"].ID:
			vals, err := g.abi.Unpack("ResponseSubmitted", lg.Data)
			if err != nil {
				return nil, fmt.Errorf("decode ResponseSubmitted: %w", err)
			}
			events = append(events, Event{
				Kind:          EventResponded,
				RequestID:     vals[0].(string),
				OfficerUserID: vals[1].(string),
				ContentID:     vals[2].(string),
				TxHash:        lg.TxHash.Hex(),
				At:            at,
			})
		}
	}
	return events, nil
}

func (g *EthereumGateway) blockTime(ctx context.Context, number uint64, cache map[uint64]time.Time) (time.Time, error) {
	if at, ok := cache[number]; ok {
		return at, nil
	}
	header, err := g.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return time.Time{}, fmt.Errorf("query block %d header: %w", number, err)
	}
	at := time.Unix(int64(header.Time), 0)
	cache[number] = at
	return at, nil
}
