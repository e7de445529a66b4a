package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// OutputFormat represents the desired listing format.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

// ListingOutputs are the formats accepted by the listing commands.
var ListingOutputs = []OutputFormat{OutputTable, OutputJSON}

var colorHeader = color.New(color.Bold, color.FgHiBlue).SprintFunc()

// Formatter renders a slice of rows or a single record.
type Formatter interface {
	Format(data interface{}, writer io.Writer) error
}

// NewFormatter creates a new Formatter for the given format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case OutputTable:
		return &TableFormatter{}, nil
	case OutputJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output: %s", format)
	}
}

// JSONFormatter formats data as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data interface{}, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// TableFormatter formats data using `header` struct tags. A slice is
// rendered as one row per element; a single struct as one line per field.
type TableFormatter struct{}

func (f *TableFormatter) Format(data interface{}, writer io.Writer) error {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	switch val.Kind() {
	case reflect.Slice:
		if val.Len() == 0 {
			return nil
		}
		headers := getHeaders(val.Type().Elem())
		for i, h := range headers {
			headers[i] = colorHeader(h)
		}
		if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
			return err
		}
		for i := 0; i < val.Len(); i++ {
			if _, err := fmt.Fprintln(w, strings.Join(getRowValues(val.Index(i)), "\t")); err != nil {
				return err
			}
		}
	case reflect.Struct:
		headers := getHeaders(val.Type())
		for i, v := range getRowValues(val) {
			if _, err := fmt.Fprintf(w, "%s:\t%s\n", colorHeader(headers[i]), v); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("data must be a slice or a struct")
	}
	return w.Flush()
}

func getHeaders(t reflect.Type) []string {
	var headers []string
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("header"); tag != "" {
			headers = append(headers, tag)
		}
	}
	return headers
}

func getRowValues(v reflect.Value) []string {
	var values []string
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("header") != "" {
			values = append(values, fmt.Sprintf("%v", v.Field(i).Interface()))
		}
	}
	return values
}
