package imaging

// Options toggles individual preprocessing operations. Composition order is
// fixed regardless of which subset is enabled: geometry corrections
// (auto-rotate, deskew) run before pixel filters (denoise, contrast,
// binarize).
type Options struct {
	AutoRotate      bool
	Deskew          bool
	Denoise         bool
	EnhanceContrast bool
	Binarize        bool
}

// BasicOptions is the cheap escalation step: pixel filters only, no
// rotation correction.
func BasicOptions() Options {
	return Options{Denoise: true, EnhanceContrast: true, Binarize: true}
}

// FullOptions enables all five operations.
func FullOptions() Options {
	return Options{AutoRotate: true, Deskew: true, Denoise: true, EnhanceContrast: true, Binarize: true}
}

// Preprocess applies the enabled operations in canonical order and returns a
// new page. The input page is never mutated.
func Preprocess(p *Page, opts Options) (*Page, error) {
	if p.empty() {
		return nil, ErrImage
	}
	out := p
	var err error
	if opts.AutoRotate {
		if out, err = AutoRotate(out); err != nil {
			return nil, err
		}
	}
	if opts.Deskew {
		if out, err = Deskew(out); err != nil {
			return nil, err
		}
	}
	if opts.Denoise {
		if out, err = Denoise(out); err != nil {
			return nil, err
		}
	}
	if opts.EnhanceContrast {
		if out, err = EnhanceContrast(out); err != nil {
			return nil, err
		}
	}
	if opts.Binarize {
		if out, err = Binarize(out); err != nil {
			return nil, err
		}
	}
	if out == p {
		out = p.Clone()
	}
	return out, nil
}
