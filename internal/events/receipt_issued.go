package events

import (
	"fmt"
	"time"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReceiptIssuedEventName    = "ReceiptIssued"
	ReceiptIssuedEventVersion = 1
	ReceiptIssuedSchemaPath   = "contracts/events/pos/ReceiptIssued.v1.enveloped.schema.json"
	PosServiceProducer        = "pos-service"
)

type ReceiptIssuedEvent struct {
	EventEnvelope
	Payload ReceiptIssuedPayload `json:"payload"`
}

type ReceiptIssuedPayload struct {
	RegisterID    string              `json:"registerId"`
	ReceiptNumber int64               `json:"receiptNumber"`
	Lines         []ReceiptIssuedLine `json:"lines"`
	Total         decimal.Decimal     `json:"total"`
	Payment       decimal.Decimal     `json:"payment"`
	Change        decimal.Decimal     `json:"change"`
	IssuedAt      time.Time           `json:"issuedAt"`
}

type ReceiptIssuedLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type EnvelopeOptions struct {
	Meta       EventMeta
	Producer   string
	SchemaPath string
	EventID    string
	OccurredAt time.Time
}

// BuildReceiptIssuedEvent wraps r in a v1 envelope. The receipt number doubles
// as the envelope sequence within the register's partition.
func BuildReceiptIssuedEvent(r receipt.Receipt, opts EnvelopeOptions) ReceiptIssuedEvent {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = ReceiptIssuedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = PosServiceProducer
	}

	partitionKey := opts.Meta.PartitionKey
	if partitionKey == "" {
		partitionKey = r.RegisterID
	}

	issuedAt := r.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = occurredAt
	}

	payload := ReceiptIssuedPayload{
		RegisterID:    r.RegisterID,
		ReceiptNumber: r.Number,
		Lines:         make([]ReceiptIssuedLine, 0, len(r.Lines)),
		Total:         r.Total,
		Payment:       r.Payment,
		Change:        r.Change,
		IssuedAt:      issuedAt,
	}
	for _, ln := range r.Lines {
		payload.Lines = append(payload.Lines, ReceiptIssuedLine{
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
			LineTotal: ln.LineTotal,
		})
	}

	return ReceiptIssuedEvent{
		EventEnvelope: EventEnvelope{
			EventName:     ReceiptIssuedEventName,
			EventVersion:  ReceiptIssuedEventVersion,
			EventID:       eventID,
			CorrelationID: opts.Meta.CorrelationID,
			CausationID:   opts.Meta.CausationID,
			Producer:      producer,
			PartitionKey:  partitionKey,
			Sequence:      r.Number,
			OccurredAt:    occurredAt,
			Schema:        schemaPath,
		},
		Payload: payload,
	}
}

// Validate checks the envelope and the payload invariants consumers rely on.
func (ev ReceiptIssuedEvent) Validate() error {
	if err := ev.EventEnvelope.Validate(ReceiptIssuedEventName, ReceiptIssuedEventVersion); err != nil {
		return err
	}
	if ev.Payload.RegisterID == "" {
		return fmt.Errorf("missing registerId")
	}
	if ev.Payload.Change.IsNegative() {
		return fmt.Errorf("negative change")
	}
	if !ev.Payload.Payment.Sub(ev.Payload.Total).Equal(ev.Payload.Change) {
		return fmt.Errorf("change does not match payment minus total")
	}
	sum := decimal.Zero
	for _, ln := range ev.Payload.Lines {
		if ln.Name == "" || ln.Quantity <= 0 {
			return fmt.Errorf("invalid line %+v", ln)
		}
		sum = sum.Add(ln.LineTotal)
	}
	if !sum.Equal(ev.Payload.Total) {
		return fmt.Errorf("line totals %s do not add up to total %s", sum, ev.Payload.Total)
	}
	return nil
}
