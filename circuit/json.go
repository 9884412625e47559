package circuit

import (
	"encoding/json"
)

// NullJSON is the serialized form of "no post-processing circuit".
const NullJSON = "null"

type gateJSON struct {
	Op          string   `json:"op"`
	Params      []Param  `json:"params,omitempty"`
	Qubits      []Qubit  `json:"qubits,omitempty"`
	Bits        []Bit    `json:"bits,omitempty"`
	Conditional []Bit    `json:"conditional,omitempty"`
	Sub         *Circuit `json:"sub,omitempty"`
}

type circuitJSON struct {
	Qubits []Qubit          `json:"qubits"`
	Bits   []Bit            `json:"bits"`
	Gates  []gateJSON       `json:"gates"`
	Phase  Param            `json:"phase"`
	Perm   map[string]Qubit `json:"implicit_permutation,omitempty"`
}

func (c *Circuit) MarshalJSON() ([]byte, error) {
	out := circuitJSON{
		Qubits: c.Qubits,
		Bits:   c.Bits,
		Phase:  c.Phase,
	}
	for _, g := range c.Gates {
		out.Gates = append(out.Gates, gateJSON{
			Op:          g.Op.String(),
			Params:      g.Params,
			Qubits:      g.Qubits,
			Bits:        g.Bits,
			Conditional: g.Conditional,
			Sub:         g.Sub,
		})
	}
	if c.perm != nil {
		out.Perm = make(map[string]Qubit, len(c.perm))
		for k, v := range c.perm {
			out.Perm[k.String()] = v
		}
	}
	return json.Marshal(out)
}

func (c *Circuit) UnmarshalJSON(data []byte) error {
	var in circuitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Qubits = in.Qubits
	c.Bits = in.Bits
	c.Phase = in.Phase
	c.Gates = nil
	for _, g := range in.Gates {
		op, err := ToOpType(g.Op)
		if err != nil {
			return err
		}
		c.Gates = append(c.Gates, Gate{
			Op:          op,
			Params:      g.Params,
			Qubits:      g.Qubits,
			Bits:        g.Bits,
			Conditional: g.Conditional,
			Sub:         g.Sub,
		})
	}
	if in.Perm != nil {
		c.perm = make(map[Qubit]Qubit, len(in.Perm))
		for _, q := range c.Qubits {
			if v, ok := in.Perm[q.String()]; ok {
				c.perm[q] = v
			}
		}
	}
	return nil
}

// Serialize renders the circuit for embedding in a result handle. A nil
// circuit serializes to NullJSON.
func Serialize(c *Circuit) (string, error) {
	if c == nil {
		return NullJSON, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize restores a circuit serialized by Serialize. NullJSON yields a
// nil circuit.
func Deserialize(s string) (*Circuit, error) {
	if s == "" || s == NullJSON {
		return nil, nil
	}
	c := &Circuit{}
	if err := json.Unmarshal([]byte(s), c); err != nil {
		return nil, err
	}
	return c, nil
}
