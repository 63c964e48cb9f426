// Package namespace resolves tenant scopes to vector store collection names.
//
// A namespace is the isolation boundary of the system: every chunk is tagged
// with exactly one namespace, and retrieval only ever reads the collection
// that namespace resolves to. Resolution is a pure function of the scope kind
// and its identifiers, so the same inputs name the same collection at
// ingestion time and at query time.
package namespace

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind is the hierarchy level of a namespace.
type Kind string

const (
	// KindCompany scopes data to a whole company.
	KindCompany Kind = "company"
	// KindTeam scopes data to one team within a company.
	KindTeam Kind = "team"
	// KindProject scopes data to one project within a company.
	KindProject Kind = "project"
)

// Common errors.
var (
	ErrInvalidKind       = errors.New("invalid namespace kind")
	ErrMissingIdentifier = errors.New("missing namespace identifier")
	ErrInvalidIdentifier = errors.New("invalid namespace identifier")
)

// idPattern restricts identifiers to lowercase alphanumerics. Underscores are
// rejected on purpose: they are the separator in collection names, and
// excluding them from identifiers keeps distinct namespaces from ever
// colliding on the same name.
var idPattern = regexp.MustCompile(`^[a-z0-9]{1,32}$`)

// Namespace identifies one isolation boundary.
//
// CompanyID is always required. SecondaryID carries the team or project
// identifier and is required for those kinds.
type Namespace struct {
	Kind        Kind
	CompanyID   string
	SecondaryID string
}

// Company returns a company-wide namespace.
func Company(companyID string) Namespace {
	return Namespace{Kind: KindCompany, CompanyID: companyID}
}

// Team returns a team namespace within a company.
func Team(companyID, teamID string) Namespace {
	return Namespace{Kind: KindTeam, CompanyID: companyID, SecondaryID: teamID}
}

// Project returns a project namespace within a company.
func Project(companyID, projectID string) Namespace {
	return Namespace{Kind: KindProject, CompanyID: companyID, SecondaryID: projectID}
}

// Validate checks that the namespace carries the identifiers its kind needs.
func (n Namespace) Validate() error {
	switch n.Kind {
	case KindCompany:
		if n.CompanyID == "" {
			return fmt.Errorf("%w: company id required", ErrMissingIdentifier)
		}
	case KindTeam, KindProject:
		if n.CompanyID == "" {
			return fmt.Errorf("%w: company id required", ErrMissingIdentifier)
		}
		if n.SecondaryID == "" {
			return fmt.Errorf("%w: %s id required", ErrMissingIdentifier, n.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, n.Kind)
	}

	if !idPattern.MatchString(n.CompanyID) {
		return fmt.Errorf("%w: company id %q", ErrInvalidIdentifier, n.CompanyID)
	}
	if n.SecondaryID != "" && !idPattern.MatchString(n.SecondaryID) {
		return fmt.Errorf("%w: %s id %q", ErrInvalidIdentifier, n.Kind, n.SecondaryID)
	}
	return nil
}

// Collection returns the collection name for this namespace.
//
// The name is structured rather than hashed so collisions are impossible by
// construction and names stay debuggable:
//
//	company:  company_{company}_chunks
//	team:     team_{team}_{company}_chunks
//	project:  project_{project}_company_{company}_chunks
//
// Injectivity holds because identifiers cannot contain underscores and each
// kind has a distinct prefix and arity.
func (n Namespace) Collection() (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	switch n.Kind {
	case KindCompany:
		return fmt.Sprintf("company_%s_chunks", n.CompanyID), nil
	case KindTeam:
		return fmt.Sprintf("team_%s_%s_chunks", n.SecondaryID, n.CompanyID), nil
	case KindProject:
		return fmt.Sprintf("project_%s_company_%s_chunks", n.SecondaryID, n.CompanyID), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, n.Kind)
	}
}

// Metadata returns the scope tags attached to every chunk stored under this
// namespace. Keys follow the original upload metadata scheme.
func (n Namespace) Metadata() map[string]string {
	meta := map[string]string{"company_id": n.CompanyID}
	switch n.Kind {
	case KindTeam:
		meta["team_id"] = n.SecondaryID
	case KindProject:
		meta["project_id"] = n.SecondaryID
	}
	return meta
}

// String implements fmt.Stringer for logging.
func (n Namespace) String() string {
	if n.SecondaryID != "" {
		return fmt.Sprintf("%s:%s/%s", n.Kind, n.CompanyID, n.SecondaryID)
	}
	return fmt.Sprintf("%s:%s", n.Kind, n.CompanyID)
}
