package quad

import (
	"github.com/goccy/go-json"
)

type JSONOperand struct {
	Kind OperandKind `json:"kind"`
	Text string      `json:"text"`
}

type JSONQuadruple struct {
	Address *int         `json:"address,omitempty"`
	Op      string       `json:"op"`
	Name    string       `json:"name"`
	Arg1    *JSONOperand `json:"arg1,omitempty"`
	Arg2    *JSONOperand `json:"arg2,omitempty"`
	Result  *JSONOperand `json:"result,omitempty"`
}

func toJSONOperand(o Operand) *JSONOperand {
	if o == nil {
		return nil
	}
	return &JSONOperand{Kind: KindOf(o), Text: o.String()}
}

func (q Quadruple) ToJSON() JSONQuadruple {
	jq := JSONQuadruple{
		Op:     q.Op.String(),
		Name:   q.Op.Name(),
		Arg1:   toJSONOperand(q.Arg1),
		Arg2:   toJSONOperand(q.Arg2),
		Result: toJSONOperand(q.Result),
	}
	if q.placed {
		addr := int(q.address)
		jq.Address = &addr
	}
	return jq
}

func (q Quadruple) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.ToJSON())
}

// ListingJSON returns the JSON representation of the quadruples of the table, in list order.
func ListingJSON(t *Table, indent bool) ([]byte, error) {
	list := make([]JSONQuadruple, len(t.records))
	for i, record := range t.records {
		list[i] = record.ToJSON()
	}
	if indent {
		return json.MarshalIndent(list, "", "  ")
	}
	return json.Marshal(list)
}
