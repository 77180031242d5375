package fintab

// ExtractOptions holds configuration for an extraction run.
type ExtractOptions struct {
	// Page selection (1-indexed); nil means all pages
	pages []int

	// Classifier score gate override; negative means use the default
	minScore float64

	// Template forced by ID, bypassing the matcher
	forceTemplate string

	// Aggressive mode: lowered score gate, template threshold ignored
	aggressive bool
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:         nil,
		minScore:      -1,
		forceTemplate: "",
		aggressive:    false,
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		minScore:      o.minScore,
		forceTemplate: o.forceTemplate,
		aggressive:    o.aggressive,
	}

	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
