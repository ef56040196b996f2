package input

import "strconv"

const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// Page is a normalized listing window.
type Page struct {
	Offset int64
	Limit  int64
	Number int64
}

// ParsePage derives the listing window from the raw start and len
// parameters. Both absent yields the defaults; otherwise both must be
// integer tokens and len must be positive.
//
// Number is Offset/Limit+1 with truncating division, which only lines up
// with real page boundaries when every page used the same Limit.
func ParsePage(start, length string) (Page, error) {
	if start == "" && length == "" {
		return Page{Offset: DefaultOffset, Limit: DefaultLimit, Number: DefaultOffset/DefaultLimit + 1}, nil
	}
	if err := Integer("start", start); err != nil {
		return Page{}, err
	}
	if err := Integer("len", length); err != nil {
		return Page{}, err
	}
	offset, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return Page{}, &ValidationError{Field: "start", Reason: "out of range"}
	}
	limit, err := strconv.ParseInt(length, 10, 64)
	if err != nil {
		return Page{}, &ValidationError{Field: "len", Reason: "out of range"}
	}
	if limit == 0 {
		return Page{}, &ValidationError{Field: "len", Reason: "must be positive"}
	}
	return Page{Offset: offset, Limit: limit, Number: offset/limit + 1}, nil
}

// ParseID validates a required non-negative integer identifier.
func ParseID(name, value string) (int64, error) {
	if err := Integer(name, value); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: name, Reason: "out of range"}
	}
	return id, nil
}
