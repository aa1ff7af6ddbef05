package domain

import (
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"
)

// Category is the package subdirectory an artifact is copied into.
type Category string

const (
	// CategoryInclude holds headers.
	CategoryInclude Category = "include"
	// CategoryLib holds libraries and build-system fragments.
	CategoryLib Category = "lib"
	// CategoryBin holds executables and Windows DLLs.
	CategoryBin Category = "bin"
	// CategoryRes holds any other resources.
	CategoryRes Category = "res"
)

// Categories lists the valid categories in layout order.
var Categories = []Category{CategoryInclude, CategoryLib, CategoryBin, CategoryRes}

// ArtifactRule copies files whose base name matches Pattern, found anywhere
// below From in the install directory, into Category.
type ArtifactRule struct {
	Pattern  string
	Category Category
	// From is relative to the install directory. Empty means the install root.
	From string
	// Mandatory rules that match nothing fail packaging.
	Mandatory bool
}

// String identifies the rule in logs and errors.
func (r ArtifactRule) String() string {
	return string(r.Category) + " (" + r.Pattern + ")"
}

// Validate checks the category and the glob syntax.
func (r ArtifactRule) Validate() error {
	if r.Pattern == "" {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrMissingField, "artifacts.pattern"))
	}
	if _, err := filepath.Match(r.Pattern, ""); err != nil {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrInvalidPattern, r.Pattern))
	}
	if !slices.Contains(Categories, r.Category) {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrInvalidCategory, string(r.Category)))
	}
	if filepath.IsAbs(r.From) {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrInvalidPattern, "artifacts.from must be relative: "+r.From))
	}
	return nil
}

// Matches reports whether the base name of path matches the rule's pattern.
func (r ArtifactRule) Matches(path string) bool {
	ok, err := filepath.Match(r.Pattern, filepath.Base(path))
	return err == nil && ok
}

// DefaultArtifactRules returns the standard rules: headers always mandatory,
// the library kind of the selected link mode mandatory, CMake fragments optional.
func DefaultArtifactRules(shared bool) []ArtifactRule {
	return []ArtifactRule{
		{Pattern: "*.h", Category: CategoryInclude, From: "include", Mandatory: true},
		{Pattern: "*.so", Category: CategoryLib, From: "lib", Mandatory: shared},
		{Pattern: "*.a", Category: CategoryLib, From: "lib", Mandatory: !shared},
		{Pattern: "*.cmake", Category: CategoryLib, From: "lib"},
	}
}

// DefaultImportRules returns the rules a consumer uses to pull artifacts out of its dependencies.
func DefaultImportRules() []ArtifactRule {
	return []ArtifactRule{
		{Pattern: "*.h", Category: CategoryInclude, From: "include"},
		{Pattern: "*.so", Category: CategoryLib, From: "lib"},
		{Pattern: "*.cmake", Category: CategoryLib, From: "lib"},
	}
}
