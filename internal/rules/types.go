package rules

// Operator represents a logical or comparison operator
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpLessThan       Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "contains"
	OpMatches        Operator = "matches"
	OpAnd            Operator = "&&"
	OpOr             Operator = "||"
)

// ValueType represents the type of a literal
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeNull    ValueType = "null"
)

// Expression is a node of a parsed rule expression
type Expression interface {
	Evaluate(record Record) (interface{}, error)
}

// Record is the metadata record a rule is evaluated against
type Record map[string]interface{}

// BinaryExpression represents a binary operation (e.g., A == B)
type BinaryExpression struct {
	Left     Expression
	Operator Operator
	Right    Expression
}

// NotExpression negates its operand
type NotExpression struct {
	Operand Expression
}

func (n *NotExpression) Evaluate(record Record) (interface{}, error) {
	v, err := n.Operand.Evaluate(record)
	if err != nil {
		return nil, err
	}
	return !toBool(v), nil
}

// Literal represents a constant value
type Literal struct {
	Value interface{}
	Type  ValueType
}

func (l *Literal) Evaluate(record Record) (interface{}, error) {
	return l.Value, nil
}

// Identifier looks up a record element by ID
type Identifier struct {
	Name string
}

func (i *Identifier) Evaluate(record Record) (interface{}, error) {
	if val, ok := record[i.Name]; ok {
		return val, nil
	}
	return nil, nil // missing elements evaluate to null
}

// PropertyAccess reads a field of a structured-object element (e.g., address.city)
type PropertyAccess struct {
	Object   Expression
	Property string
}

func (p *PropertyAccess) Evaluate(record Record) (interface{}, error) {
	obj, err := p.Object.Evaluate(record)
	if err != nil {
		return nil, err
	}

	switch m := obj.(type) {
	case map[string]interface{}:
		return m[p.Property], nil
	case Record:
		return m[p.Property], nil
	case map[string]string:
		if val, ok := m[p.Property]; ok {
			return val, nil
		}
	}

	return nil, nil
}
