package blockchain

import (
	"fmt"
	"strings"

	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
)

// Invocation is one contract function call with its typed arguments.
type Invocation struct {
	Contract flow.Address
	Function string
	Args     []cadence.Value
}

func NewInvocation(contract flow.Address, function string, args ...cadence.Value) Invocation {
	return Invocation{
		Contract: contract,
		Function: function,
		Args:     args,
	}
}

// Same compares the parts a signature covers: contract, function and arguments.
func (i Invocation) Same(other Invocation) bool {
	if i.Contract != other.Contract || i.Function != other.Function || len(i.Args) != len(other.Args) {
		return false
	}
	for idx := range i.Args {
		a, err := encodeValue(i.Args[idx])
		if err != nil {
			return false
		}
		b, err := encodeValue(other.Args[idx])
		if err != nil {
			return false
		}
		if string(a) != string(b) {
			return false
		}
	}
	return true
}

func (i Invocation) String() string {
	args := make([]string, len(i.Args))
	for idx, a := range i.Args {
		args[idx] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", i.Contract.Hex(), i.Function, strings.Join(args, ", "))
}
