package function

import (
	"errors"
	"fmt"
	"math"

	tokenizer "github.com/benoitkugler/pstokenizer"
)

// FunctionPostScriptCalculator (type 4) is a program written in a
// small subset of the PostScript language, evaluated on a number
// stack. Booleans are represented by the numbers 0 and 1.
type FunctionPostScriptCalculator struct {
	program psProgram
}

func (c FunctionPostScriptCalculator) evaluate(f *FunctionDict, in, out []Fl) error {
	st := psStack{data: make([]Fl, 0, 2*len(in)+16)}
	st.data = append(st.data, in...)
	if err := c.program.exec(&st); err != nil {
		return err
	}
	n := len(f.Range)
	if len(st.data) < n {
		return fmt.Errorf("calculator function left %d values for %d outputs", len(st.data), n)
	}
	copy(out, st.data[len(st.data)-n:])
	return nil
}

type psOp uint8

const (
	psPush psOp = iota
	psIf
	psIfElse
	psAdd
	psSub
	psMul
	psDiv
	psIdiv
	psMod
	psNeg
	psAbs
	psCeiling
	psFloor
	psRound
	psTruncate
	psSqrt
	psSin
	psCos
	psAtan
	psExp
	psLn
	psLog
	psCvi
	psCvr
	psAnd
	psOr
	psXor
	psNot
	psBitshift
	psEq
	psNe
	psGt
	psGe
	psLt
	psLe
	psTrue
	psFalse
	psPop
	psExch
	psDup
	psCopy
	psIndex
	psRoll
)

var psOperators = map[string]psOp{
	"add": psAdd, "sub": psSub, "mul": psMul, "div": psDiv,
	"idiv": psIdiv, "mod": psMod, "neg": psNeg, "abs": psAbs,
	"ceiling": psCeiling, "floor": psFloor, "round": psRound,
	"truncate": psTruncate, "sqrt": psSqrt, "sin": psSin, "cos": psCos,
	"atan": psAtan, "exp": psExp, "ln": psLn, "log": psLog,
	"cvi": psCvi, "cvr": psCvr,
	"and": psAnd, "or": psOr, "xor": psXor, "not": psNot,
	"bitshift": psBitshift,
	"eq":       psEq, "ne": psNe, "gt": psGt, "ge": psGe, "lt": psLt, "le": psLe,
	"true": psTrue, "false": psFalse,
	"pop": psPop, "exch": psExch, "dup": psDup, "copy": psCopy,
	"index": psIndex, "roll": psRoll,
}

type psInstr struct {
	op       psOp
	val      Fl        // psPush
	ifProc   psProgram // psIf, psIfElse
	elseProc psProgram // psIfElse
}

type psProgram []psInstr

// parseCalculator reads the whole program of a type 4 function, that
// is one procedure, possibly nested.
func parseCalculator(content []byte) (FunctionPostScriptCalculator, error) {
	var out FunctionPostScriptCalculator
	tk := tokenizer.NewTokenizer(content)
	token, err := tk.NextToken()
	if err != nil {
		return out, err
	}
	if token.Kind != tokenizer.StartProc {
		return out, fmt.Errorf("expected procedure start in calculator function, got %s", token.Value)
	}
	out.program, err = parseProcedure(tk)
	return out, err
}

// parseProcedure reads instructions until the closing brace. The
// procedures preceding an if or ifelse operator are attached to it.
func parseProcedure(tk *tokenizer.Tokenizer) (psProgram, error) {
	var out psProgram
	var procs []psProgram
	for {
		token, err := tk.NextToken()
		if err != nil {
			return nil, err
		}
		switch token.Kind {
		case tokenizer.EOF:
			return nil, errors.New("unbalanced procedure in calculator function")
		case tokenizer.Integer:
			v, err := token.Int()
			if err != nil {
				return nil, err
			}
			out = append(out, psInstr{op: psPush, val: Fl(v)})
		case tokenizer.Float:
			v, err := token.Float()
			if err != nil {
				return nil, err
			}
			out = append(out, psInstr{op: psPush, val: Fl(v)})
		case tokenizer.StartProc:
			sub, err := parseProcedure(tk)
			if err != nil {
				return nil, err
			}
			procs = append(procs, sub)
		case tokenizer.EndProc:
			if len(procs) != 0 {
				return nil, errors.New("dangling procedure in calculator function")
			}
			return out, nil
		case tokenizer.Other:
			switch string(token.Value) {
			case "if":
				if len(procs) < 1 {
					return nil, errors.New("if operator without procedure")
				}
				out = append(out, psInstr{op: psIf, ifProc: procs[len(procs)-1]})
				procs = procs[:len(procs)-1]
			case "ifelse":
				if len(procs) < 2 {
					return nil, errors.New("ifelse operator without two procedures")
				}
				out = append(out, psInstr{
					op:       psIfElse,
					ifProc:   procs[len(procs)-2],
					elseProc: procs[len(procs)-1],
				})
				procs = procs[:len(procs)-2]
			default:
				op, ok := psOperators[string(token.Value)]
				if !ok {
					return nil, fmt.Errorf("unsupported operator %s in calculator function", token.Value)
				}
				out = append(out, psInstr{op: op})
			}
		default:
			return nil, fmt.Errorf("unexpected token %s in calculator function", token.Value)
		}
	}
}

type psStack struct {
	data []Fl
}

func (s *psStack) push(v Fl) { s.data = append(s.data, v) }

func (s *psStack) pop() (Fl, error) {
	if len(s.data) == 0 {
		return 0, errors.New("stack underflow in calculator function")
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

func (s *psStack) pop2() (Fl, Fl, error) {
	b, err := s.pop()
	if err != nil {
		return 0, 0, err
	}
	a, err := s.pop()
	return a, b, err
}

func psBool(b bool) Fl {
	if b {
		return 1
	}
	return 0
}

func (p psProgram) exec(st *psStack) error {
	for _, ins := range p {
		var (
			a, b Fl
			err  error
		)
		switch ins.op {
		case psPush:
			st.push(ins.val)
			continue
		case psTrue:
			st.push(1)
			continue
		case psFalse:
			st.push(0)
			continue
		case psIf:
			if a, err = st.pop(); err != nil {
				return err
			}
			if a != 0 {
				if err = ins.ifProc.exec(st); err != nil {
					return err
				}
			}
			continue
		case psIfElse:
			if a, err = st.pop(); err != nil {
				return err
			}
			proc := ins.elseProc
			if a != 0 {
				proc = ins.ifProc
			}
			if err = proc.exec(st); err != nil {
				return err
			}
			continue
		}

		switch ins.op {
		// binary operators
		case psAdd, psSub, psMul, psDiv, psIdiv, psMod, psAnd, psOr,
			psXor, psBitshift, psExp, psAtan,
			psEq, psNe, psGt, psGe, psLt, psLe:
			if a, b, err = st.pop2(); err != nil {
				return err
			}
		// unary operators
		case psNeg, psAbs, psCeiling, psFloor, psRound, psTruncate,
			psSqrt, psSin, psCos, psLn, psLog, psCvi, psCvr, psPop,
			psDup, psCopy, psIndex:
			if a, err = st.pop(); err != nil {
				return err
			}
		}

		switch ins.op {
		case psAdd:
			st.push(a + b)
		case psSub:
			st.push(a - b)
		case psMul:
			st.push(a * b)
		case psDiv:
			st.push(a / b)
		case psIdiv:
			if int64(b) == 0 {
				return errors.New("division by zero in calculator function")
			}
			st.push(Fl(int64(a) / int64(b)))
		case psMod:
			if int64(b) == 0 {
				return errors.New("division by zero in calculator function")
			}
			st.push(Fl(int64(a) % int64(b)))
		case psNeg:
			st.push(-a)
		case psAbs:
			st.push(Fl(math.Abs(float64(a))))
		case psCeiling:
			st.push(Fl(math.Ceil(float64(a))))
		case psFloor:
			st.push(Fl(math.Floor(float64(a))))
		case psRound:
			st.push(Fl(math.Round(float64(a))))
		case psTruncate:
			st.push(Fl(math.Trunc(float64(a))))
		case psSqrt:
			st.push(Fl(math.Sqrt(float64(a))))
		case psSin:
			st.push(Fl(math.Sin(float64(a) * math.Pi / 180)))
		case psCos:
			st.push(Fl(math.Cos(float64(a) * math.Pi / 180)))
		case psAtan:
			deg := Fl(math.Atan2(float64(a), float64(b)) / math.Pi * 180)
			if deg < 0 {
				deg += 360
			}
			st.push(deg)
		case psExp:
			st.push(Fl(math.Pow(float64(a), float64(b))))
		case psLn:
			st.push(Fl(math.Log(float64(a))))
		case psLog:
			st.push(Fl(math.Log10(float64(a))))
		case psCvi:
			st.push(Fl(int64(a)))
		case psCvr:
			st.push(a)
		case psAnd:
			st.push(Fl(int64(a) & int64(b)))
		case psOr:
			st.push(Fl(int64(a) | int64(b)))
		case psXor:
			st.push(Fl(int64(a) ^ int64(b)))
		case psNot:
			if a, err = st.pop(); err != nil {
				return err
			}
			switch a {
			case 0:
				st.push(1)
			case 1:
				st.push(0)
			default:
				st.push(Fl(^int64(a)))
			}
		case psBitshift:
			if shift := int64(b); shift >= 0 {
				st.push(Fl(int64(a) << shift))
			} else {
				st.push(Fl(int64(a) >> -shift))
			}
		case psEq:
			st.push(psBool(a == b))
		case psNe:
			st.push(psBool(a != b))
		case psGt:
			st.push(psBool(a > b))
		case psGe:
			st.push(psBool(a >= b))
		case psLt:
			st.push(psBool(a < b))
		case psLe:
			st.push(psBool(a <= b))
		case psPop:
			// value already discarded
		case psExch:
			if a, b, err = st.pop2(); err != nil {
				return err
			}
			st.push(b)
			st.push(a)
		case psDup:
			st.push(a)
			st.push(a)
		case psCopy:
			n := int(a)
			if n < 0 || n > len(st.data) {
				return errors.New("invalid copy count in calculator function")
			}
			st.data = append(st.data, st.data[len(st.data)-n:]...)
		case psIndex:
			n := int(a)
			if n < 0 || n >= len(st.data) {
				return errors.New("invalid index in calculator function")
			}
			st.push(st.data[len(st.data)-1-n])
		case psRoll:
			if a, b, err = st.pop2(); err != nil {
				return err
			}
			n, j := int(a), int(b)
			if n < 0 || n > len(st.data) {
				return errors.New("invalid roll count in calculator function")
			}
			if n > 0 && j != 0 {
				j = ((j % n) + n) % n
				top := st.data[len(st.data)-n:]
				rolled := append(append([]Fl(nil), top[n-j:]...), top[:n-j]...)
				copy(top, rolled)
			}
		}
	}
	return nil
}
