// Package gate is the approval step between building and signing: a batch
// of serialized transactions is presented once, and a single yes/no decision
// applies to the whole batch.
package gate

import "context"

// Kind names the intent category shown to the user.
type Kind string

const (
	KindPayment         Kind = "payment"
	KindCollectable     Kind = "collectable"
	KindTreasurySwap    Kind = "treasury-swap"
	KindAnchorTxn       Kind = "anchor-txn"
	KindClaimRewards    Kind = "claim-rewards"
	KindClaimAllRewards Kind = "claim-all-rewards"
	KindMintCredits     Kind = "mint-data-credits"
	KindDelegateCredits Kind = "delegate-data-credits"
	KindUpdateEntity    Kind = "update-entity-info"
)

// Request is one approval prompt. SerializedTxs carry the unsigned wire
// form of every transaction in the batch; Warning, when non-empty, is a
// risk notice determined before the prompt is shown.
type Request struct {
	Kind          Kind
	ContextURL    string
	Message       string
	Warning       string
	SerializedTxs [][]byte
}

// Gate blocks until the user approves or rejects a request. Implementations
// must always resolve, including when the hosting UI is torn down, in which
// case the pending request resolves to rejection.
type Gate interface {
	Show(ctx context.Context, req *Request) (approved bool, err error)
}

// Static is a gate with a fixed answer, for tests and headless flows.
type Static struct {
	Approve  bool
	Requests []*Request
}

func (s *Static) Show(ctx context.Context, req *Request) (bool, error) {
	s.Requests = append(s.Requests, req)
	return s.Approve, nil
}
