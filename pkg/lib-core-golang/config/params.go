package config

// paramID uniquely identifies a param within sources
type paramID struct {
	key     string
	service string
}

func (p paramID) String() string {
	return "{key: " + p.key + "; service: " + p.service + "}"
}

type param interface {
	id() paramID
	emptyValue() paramValue
}

type paramImpl struct {
	paramID
}

func (p paramImpl) id() paramID {
	return p.paramID
}

// StringParam represents params of string type
type StringParam struct {
	paramImpl
}

func newStringParam(key string, service string) StringParam {
	return StringParam{paramImpl{paramID{key: key, service: service}}}
}

func (p StringParam) emptyValue() paramValue {
	return StringVal{val: new(string)}
}

// IntParam represents params of int type
type IntParam struct {
	paramImpl
}

func newIntParam(key string, service string) IntParam {
	return IntParam{paramImpl{paramID{key: key, service: service}}}
}

func (p IntParam) emptyValue() paramValue {
	return IntVal{val: new(int)}
}

// BoolParam represents params of bool type
type BoolParam struct {
	paramImpl
}

func newBoolParam(key string, service string) BoolParam {
	return BoolParam{paramImpl{paramID{key: key, service: service}}}
}

func (p BoolParam) emptyValue() paramValue {
	return BoolVal{val: new(bool)}
}
