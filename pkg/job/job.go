/*
Package job describes Switchboard oracle jobs: ordered lists of tasks executed
off-chain by oracle operators to produce a single numeric value. Only the
HTTP fetch and JSON path tasks are supported, jobs are encoded with the
Switchboard OracleJob protobuf schema.
*/
package job

import (
	"errors"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

// MaxTasks is the maximum number of tasks accepted in a single job.
const MaxTasks = 32

// Method is an HTTP method of the HTTPTask.
type Method int32

// Methods supported by the oracle HTTP task.
const (
	MethodNulled Method = iota
	MethodGet
	MethodPost
)

// AggregationMethod tells how the JSON path task combines multiple matches.
type AggregationMethod int32

// Aggregation methods of the JSON path task.
const (
	AggregationNone AggregationMethod = iota
	AggregationMin
	AggregationMax
	AggregationSum
	AggregationMean
	AggregationMedian
)

var (
	methodNames      = []string{"", "GET", "POST"}
	aggregationNames = []string{"", "MIN", "MAX", "SUM", "MEAN", "MEDIAN"}
)

type (
	// OracleJob is an ordered list of tasks producing a single value.
	OracleJob struct {
		Tasks []Task `yaml:"Tasks"`
	}

	// Task is a single job step, exactly one of its fields is set.
	Task struct {
		HTTP      *HTTPTask      `yaml:"HTTP,omitempty"`
		JSONParse *JSONParseTask `yaml:"JSONParse,omitempty"`
	}

	// HTTPTask fetches the given URL and passes the response body to the
	// next task.
	HTTPTask struct {
		URL     string   `yaml:"URL"`
		Method  Method   `yaml:"Method,omitempty"`
		Headers []Header `yaml:"Headers,omitempty"`
		Body    string   `yaml:"Body,omitempty"`
	}

	// Header is an HTTP request header.
	Header struct {
		Key   string `yaml:"Key"`
		Value string `yaml:"Value"`
	}

	// JSONParseTask extracts a value from the JSON input using a JSONPath
	// expression like `$.data[0].price`.
	JSONParseTask struct {
		Path              string            `yaml:"Path"`
		AggregationMethod AggregationMethod `yaml:"AggregationMethod,omitempty"`
	}
)

var (
	// ErrNoTasks is returned for jobs without tasks.
	ErrNoTasks = errors.New("job has no tasks")
	// ErrUnsupportedTask is returned when the task is not one of the
	// supported variants.
	ErrUnsupportedTask = errors.New("unsupported task")
)

// New creates a job fetching the given URL and extracting the value at path
// from the JSON response.
func New(u string, path string) *OracleJob {
	return &OracleJob{Tasks: []Task{
		{HTTP: &HTTPTask{URL: u}},
		{JSONParse: &JSONParseTask{Path: path}},
	}}
}

// Validate checks that the job is well-formed: it has tasks and each task
// has exactly one variant with required fields set. It doesn't contact
// anything.
func (j *OracleJob) Validate() error {
	if len(j.Tasks) == 0 {
		return ErrNoTasks
	}
	if len(j.Tasks) > MaxTasks {
		return fmt.Errorf("too many tasks: %d > %d", len(j.Tasks), MaxTasks)
	}
	for i := range j.Tasks {
		if err := j.Tasks[i].validate(); err != nil {
			return fmt.Errorf("task #%d: %w", i, err)
		}
	}
	return nil
}

func (t *Task) validate() error {
	switch {
	case t.HTTP != nil && t.JSONParse != nil:
		return errors.New("more than one task type set")
	case t.HTTP != nil:
		if t.HTTP.URL == "" {
			return errors.New("empty URL")
		}
		if _, err := url.ParseRequestURI(t.HTTP.URL); err != nil {
			return fmt.Errorf("bad URL: %w", err)
		}
	case t.JSONParse != nil:
		if t.JSONParse.Path == "" {
			return errors.New("empty JSON path")
		}
	default:
		return ErrUnsupportedTask
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("METHOD(%d)", int32(m))
}

// MarshalYAML implements the yaml.Marshaler interface.
func (m Method) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (m *Method) UnmarshalYAML(node *yaml.Node) error {
	v, err := enumFromNode(node, methodNames)
	if err != nil {
		return fmt.Errorf("method: %w", err)
	}
	*m = Method(v)
	return nil
}

// String implements the fmt.Stringer interface.
func (a AggregationMethod) String() string {
	if a >= 0 && int(a) < len(aggregationNames) {
		return aggregationNames[a]
	}
	return fmt.Sprintf("AGGREGATION(%d)", int32(a))
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a AggregationMethod) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *AggregationMethod) UnmarshalYAML(node *yaml.Node) error {
	v, err := enumFromNode(node, aggregationNames)
	if err != nil {
		return fmt.Errorf("aggregation method: %w", err)
	}
	*a = AggregationMethod(v)
	return nil
}

func enumFromNode(node *yaml.Node, names []string) (int32, error) {
	var s string
	if err := node.Decode(&s); err != nil {
		return 0, err
	}
	for i := 1; i < len(names); i++ {
		if names[i] == s {
			return int32(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}
