package query

import (
	"fmt"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/pkg/errors"
	"strings"
	"time"
)

type (
	Filter struct {
		Property FilterProperty `json:"property"`
		Operator Operator       `json:"operator"`
		Value    string         `json:"value"`
	}

	FilterProperty string
	Operator       string
)

const (
	PropertyProductId     FilterProperty = "product_id"
	PropertyEventType     FilterProperty = "event_type"
	PropertyActorId       FilterProperty = "actor_id"
	PropertyOrgId         FilterProperty = "org_id"
	PropertyTimestamp     FilterProperty = "timestamp"
	PropertySchemaVersion FilterProperty = "schema_version"

	OperatorEqual  Operator = "eq"
	OperatorAfter  Operator = "after"
	OperatorBefore Operator = "before"
)

var ErrInvalidFilter = errors.New("invalid filter")

// ByProduct is the common case: all events for one subject.
func ByProduct(productID string) []Filter {
	return []Filter{
		{
			Property: PropertyProductId,
			Operator: OperatorEqual,
			Value:    productID,
		},
	}
}

func (f *Filter) Matches(event trace.EventRecord) (bool, error) {
	switch f.Property {
	case PropertyProductId:
		if f.Operator != OperatorEqual {
			return false, ErrInvalidFilter
		}

		return f.Value == event.ProductID, nil
	case PropertyEventType:
		if f.Operator != OperatorEqual {
			return false, ErrInvalidFilter
		}

		return strings.EqualFold(f.Value, string(event.EventType)), nil
	case PropertyActorId:
		if f.Operator != OperatorEqual {
			return false, ErrInvalidFilter
		}

		return f.Value == event.Actor.ID, nil
	case PropertyOrgId:
		if f.Operator != OperatorEqual {
			return false, ErrInvalidFilter
		}

		return f.Value == event.Actor.OrgID, nil
	case PropertyTimestamp:
		timestamp, err := time.Parse(time.RFC3339, f.Value)
		if err != nil {
			return false, fmt.Errorf("%w: invalid timestamp", ErrInvalidFilter)
		}

		switch f.Operator {
		case OperatorAfter:
			return event.Timestamp.After(timestamp), nil
		case OperatorBefore:
			return event.Timestamp.Before(timestamp), nil
		default:
			return false, ErrInvalidFilter
		}
	case PropertySchemaVersion:
		if f.Operator != OperatorEqual {
			return false, ErrInvalidFilter
		}

		return f.Value == event.SchemaVersion, nil
	default:
		return false, ErrInvalidFilter
	}
}
