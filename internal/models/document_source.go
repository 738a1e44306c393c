package models

// DocumentKind labels one of the tracked license or compliance categories.
type DocumentKind string

const (
	KindLearnerLicense DocumentKind = "Learner License"
	KindDrivingLicense DocumentKind = "Driving License"
	KindInsurance      DocumentKind = "Insurance"
	KindPUCC           DocumentKind = "PUCC"
	KindFitness        DocumentKind = "Fitness"
	KindPermit         DocumentKind = "Permit"
	KindVLTD           DocumentKind = "VLTD"
	KindSpeedGovernor  DocumentKind = "Speed Governor"
)

// DocumentSource describes how one document kind is stored and how its owner
// is reached. Licenses point at the citizen directly; every other kind hangs
// off a vehicle which in turn points at the citizen.
type DocumentSource struct {
	Kind       DocumentKind
	Table      string
	DateColumn string
	// IdentifierColumn lives on the document table for licenses and on the
	// vehicles table for vehicle linked kinds.
	IdentifierColumn string
	VehicleLinked    bool
}

// Registry order is the tie-break order for records sharing an expiry date.
var documentSources = []DocumentSource{
	{Kind: KindLearnerLicense, Table: "learner_licenses", DateColumn: "expiry_date", IdentifierColumn: "ll_number"},
	{Kind: KindDrivingLicense, Table: "driving_licenses", DateColumn: "expiry_date", IdentifierColumn: "dl_number"},
	{Kind: KindInsurance, Table: "insurances", DateColumn: "end_date", IdentifierColumn: "registration_no", VehicleLinked: true},
	{Kind: KindPUCC, Table: "puccs", DateColumn: "valid_until", IdentifierColumn: "registration_no", VehicleLinked: true},
	{Kind: KindFitness, Table: "fitnesses", DateColumn: "expiry_date", IdentifierColumn: "registration_no", VehicleLinked: true},
	{Kind: KindPermit, Table: "permits", DateColumn: "expiry_date", IdentifierColumn: "registration_no", VehicleLinked: true},
	{Kind: KindVLTD, Table: "vltds", DateColumn: "expiry_date", IdentifierColumn: "registration_no", VehicleLinked: true},
	{Kind: KindSpeedGovernor, Table: "speed_governors", DateColumn: "expiry_date", IdentifierColumn: "registration_no", VehicleLinked: true},
}

// NotifiableKinds are the kinds covered by the daily reminder scan, in scan order.
var NotifiableKinds = []DocumentKind{KindDrivingLicense, KindInsurance, KindPUCC, KindFitness}

// DocumentSources returns the registry in its canonical order.
func DocumentSources() []DocumentSource {
	out := make([]DocumentSource, len(documentSources))
	copy(out, documentSources)
	return out
}

// SourceByKind looks up the descriptor for kind.
func SourceByKind(kind DocumentKind) (DocumentSource, bool) {
	for _, src := range documentSources {
		if src.Kind == kind {
			return src, true
		}
	}
	return DocumentSource{}, false
}

// IsLicense reports whether the kind is a license (no vehicle linkage).
func (s DocumentSource) IsLicense() bool {
	return !s.VehicleLinked
}
