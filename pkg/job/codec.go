package job

import (
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the OracleJob protobuf schema.
const (
	jobTasksField = 1

	taskHTTPField      = 1
	taskJSONParseField = 2

	httpURLField     = 1
	httpMethodField  = 2
	httpHeadersField = 3
	httpBodyField    = 4

	headerKeyField   = 1
	headerValueField = 2

	jsonPathField        = 1
	jsonAggregationField = 2
)

// Bytes returns the protobuf encoding of the job. The job is validated first.
func (j *OracleJob) Bytes() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	for i := range j.Tasks {
		b = appendMessage(b, jobTasksField, j.Tasks[i].bytes())
	}
	return b, nil
}

// EncodeDelimited returns the protobuf encoding of the job prefixed with its
// length as an unsigned varint.
func (j *OracleJob) EncodeDelimited() ([]byte, error) {
	msg, err := j.Bytes()
	if err != nil {
		return nil, err
	}
	b := protowire.AppendVarint(make([]byte, 0, protowire.SizeVarint(uint64(len(msg)))+len(msg)), uint64(len(msg)))
	return append(b, msg...), nil
}

// Base64 returns the length-delimited encoding of the job as standard base64
// text, this is the form oracle programs expect as job data.
func (j *OracleJob) Base64() (string, error) {
	b, err := j.EncodeDelimited()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode decodes the protobuf encoding of the job.
func Decode(b []byte) (*OracleJob, error) {
	j := new(OracleJob)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != jobTasksField {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n, err := consumeMessage(typ, b)
		if err != nil {
			return 0, fmt.Errorf("task #%d: %w", len(j.Tasks), err)
		}
		t, err := decodeTask(v)
		if err != nil {
			return 0, fmt.Errorf("task #%d: %w", len(j.Tasks), err)
		}
		j.Tasks = append(j.Tasks, *t)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// DecodeDelimited decodes the length-delimited protobuf encoding of the job.
// Trailing data after the message is an error.
func DecodeDelimited(b []byte) (*OracleJob, error) {
	l, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, fmt.Errorf("bad length prefix: %w", protowire.ParseError(n))
	}
	b = b[n:]
	if uint64(len(b)) != l {
		return nil, fmt.Errorf("length mismatch: prefix says %d, got %d bytes", l, len(b))
	}
	return Decode(b)
}

// FromBase64 decodes a job from the base64 text produced by Base64.
func FromBase64(s string) (*OracleJob, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad base64: %w", err)
	}
	return DecodeDelimited(b)
}

func (t *Task) bytes() []byte {
	switch {
	case t.HTTP != nil:
		return appendMessage(nil, taskHTTPField, t.HTTP.bytes())
	case t.JSONParse != nil:
		return appendMessage(nil, taskJSONParseField, t.JSONParse.bytes())
	}
	return nil
}

func (h *HTTPTask) bytes() []byte {
	var b []byte
	b = appendString(b, httpURLField, h.URL)
	b = appendEnum(b, httpMethodField, int32(h.Method))
	for _, hdr := range h.Headers {
		var hb []byte
		hb = appendString(hb, headerKeyField, hdr.Key)
		hb = appendString(hb, headerValueField, hdr.Value)
		b = appendMessage(b, httpHeadersField, hb)
	}
	return appendString(b, httpBodyField, h.Body)
}

func (p *JSONParseTask) bytes() []byte {
	b := appendString(nil, jsonPathField, p.Path)
	return appendEnum(b, jsonAggregationField, int32(p.AggregationMethod))
}

func decodeTask(b []byte) (*Task, error) {
	t := new(Task)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case taskHTTPField:
			v, n, err := consumeMessage(typ, b)
			if err != nil {
				return 0, err
			}
			t.HTTP, err = decodeHTTPTask(v)
			t.JSONParse = nil
			return n, err
		case taskJSONParseField:
			v, n, err := consumeMessage(typ, b)
			if err != nil {
				return 0, err
			}
			t.JSONParse, err = decodeJSONParseTask(v)
			t.HTTP = nil
			return n, err
		default:
			return 0, fmt.Errorf("%w: field %d", ErrUnsupportedTask, num)
		}
	})
	if err != nil {
		return nil, err
	}
	if t.HTTP == nil && t.JSONParse == nil {
		return nil, ErrUnsupportedTask
	}
	return t, nil
}

func decodeHTTPTask(b []byte) (*HTTPTask, error) {
	h := new(HTTPTask)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case httpURLField:
			return consumeString(typ, b, &h.URL)
		case httpMethodField:
			var v int32
			n, err := consumeEnum(typ, b, &v)
			h.Method = Method(v)
			return n, err
		case httpHeadersField:
			v, n, err := consumeMessage(typ, b)
			if err != nil {
				return 0, err
			}
			var hdr Header
			err = consumeFields(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				switch num {
				case headerKeyField:
					return consumeString(typ, b, &hdr.Key)
				case headerValueField:
					return consumeString(typ, b, &hdr.Value)
				}
				return protowire.ConsumeFieldValue(num, typ, b), nil
			})
			if err != nil {
				return 0, fmt.Errorf("header: %w", err)
			}
			h.Headers = append(h.Headers, hdr)
			return n, nil
		case httpBodyField:
			return consumeString(typ, b, &h.Body)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP task: %w", err)
	}
	return h, nil
}

func decodeJSONParseTask(b []byte) (*JSONParseTask, error) {
	p := new(JSONParseTask)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case jsonPathField:
			return consumeString(typ, b, &p.Path)
		case jsonAggregationField:
			var v int32
			n, err := consumeEnum(typ, b, &v)
			p.AggregationMethod = AggregationMethod(v)
			return n, err
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, fmt.Errorf("JSON parse task: %w", err)
	}
	return p, nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// consumeFields walks over all fields of the message calling f for each
// of them. f gets the data following the tag and returns the number of bytes
// consumed, negative values are protowire errors.
func consumeFields(b []byte, f func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := f(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

var errWireType = errors.New("unexpected wire type")

func consumeMessage(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(typ protowire.Type, b []byte, s *string) (int, error) {
	v, n, err := consumeMessage(typ, b)
	if err != nil {
		return 0, err
	}
	*s = string(v)
	return n, nil
}

func consumeEnum(typ protowire.Type, b []byte, e *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*e = int32(v)
	return n, nil
}
