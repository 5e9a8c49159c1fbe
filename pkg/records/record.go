// Package records loads the per-section data shown in tooltips and detail
// panels: row, price, ticket count, capacity and a free-text description.
//
// Records are keyed by derived section id (see diagram.DeriveID). They come
// from one of several stores:
//
//   - [FileStore]: a JSON or YAML file mapping section id to record
//   - [URLStore]: the same document served over HTTP
//   - [MongoStore]: a MongoDB collection, one document per section
//   - [SQLiteStore]: a local SQLite database
//
// Records are optional. [LoadOrEmpty] turns any store failure into an empty
// [Lookup] so a chart still renders without them; sections simply show the
// "no details" placeholder.
package records

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// SectionRecord is the ticketing data for one section.
type SectionRecord struct {
	Row         Text   `json:"row,omitempty" yaml:"row,omitempty" bson:"row,omitempty"`
	Price       Text   `json:"price,omitempty" yaml:"price,omitempty" bson:"price,omitempty"`
	TicketCount int    `json:"ticketCount" yaml:"ticketCount" bson:"ticket_count"`
	Capacity    int    `json:"capacity,omitempty" yaml:"capacity,omitempty" bson:"capacity,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// Lookup maps section id to record.
type Lookup map[string]SectionRecord

// Get returns the record for id.
func (l Lookup) Get(id string) (SectionRecord, bool) {
	r, ok := l[id]
	return r, ok
}

// IDs returns the record keys in sorted order.
func (l Lookup) IDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Text is a string field that also accepts numbers, since record files
// written by hand tend to mix "A" rows with 12 rows and 380 prices.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*t = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("want string or number, got %s", s)
	}
	*t = Text(n.String())
	return nil
}

func (t *Text) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: want scalar", n.Line)
	}
	if n.Tag == "!!null" {
		*t = ""
		return nil
	}
	*t = Text(n.Value)
	return nil
}

func (t *Text) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bsontype.String:
		*t = Text(rv.StringValue())
	case bsontype.Int32:
		*t = Text(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*t = Text(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Double:
		*t = Text(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*t = ""
	default:
		return fmt.Errorf("cannot decode BSON %s into Text", bt)
	}
	return nil
}

// String returns the text.
func (t Text) String() string { return string(t) }
