package criteria

// Query-facing field names. Multi-valued fields are plural, scalar fields
// keep the canonical singular name.
const (
	OrganismOntologyTermID = "organism_ontology_term_id"
	TissueOntologyTermID   = "tissue_ontology_term_id"
	CellTypeOntologyTermID = "cell_type_ontology_term_id"

	GeneOntologyTermIDs                  = "gene_ontology_term_ids"
	TissueOntologyTermIDs                = "tissue_ontology_term_ids"
	TissueOriginalOntologyTermIDs        = "tissue_original_ontology_term_ids"
	DatasetIDs                           = "dataset_ids"
	DevelopmentStageOntologyTermIDs      = "development_stage_ontology_term_ids"
	DiseaseOntologyTermIDs               = "disease_ontology_term_ids"
	SelfReportedEthnicityOntologyTermIDs = "self_reported_ethnicity_ontology_term_ids"
	SexOntologyTermIDs                   = "sex_ontology_term_ids"
	CellTypeOntologyTermIDs              = "cell_type_ontology_term_ids"
	PublicationCitations                 = "publication_citations"
)

type FieldSpec struct {
	Name     string
	Scalar   bool
	MinItems int
}

func scalar(name string) FieldSpec {
	return FieldSpec{Name: name, Scalar: true, MinItems: 1}
}

func list(name string, minItems int) FieldSpec {
	return FieldSpec{Name: name, MinItems: minItems}
}

// Variant is a named filter schema. Field order is the declaration order
// used for predicate construction and cube-selection tie-breaks.
type Variant struct {
	Name   string
	Fields []FieldSpec
}

func (variant *Variant) Field(name string) (FieldSpec, bool) {
	for _, spec := range variant.Fields {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

func (variant *Variant) HasField(name string) bool {
	_, ok := variant.Field(name)
	return ok
}

var (
	WmgQuery = &Variant{
		Name: "wmg_query",
		Fields: []FieldSpec{
			list(GeneOntologyTermIDs, 1),
			scalar(OrganismOntologyTermID),
			list(TissueOntologyTermIDs, 1),
			list(TissueOriginalOntologyTermIDs, 0),
			list(DatasetIDs, 0),
			list(DevelopmentStageOntologyTermIDs, 0),
			list(DiseaseOntologyTermIDs, 0),
			list(SelfReportedEthnicityOntologyTermIDs, 0),
			list(SexOntologyTermIDs, 0),
		},
	}

	WmgQueryV2 = &Variant{
		Name: "wmg_query_v2",
		Fields: []FieldSpec{
			list(GeneOntologyTermIDs, 1),
			scalar(OrganismOntologyTermID),
			list(TissueOntologyTermIDs, 0),
			list(TissueOriginalOntologyTermIDs, 0),
			list(DatasetIDs, 0),
			list(DevelopmentStageOntologyTermIDs, 0),
			list(DiseaseOntologyTermIDs, 0),
			list(SelfReportedEthnicityOntologyTermIDs, 0),
			list(SexOntologyTermIDs, 0),
			list(PublicationCitations, 0),
		},
	}

	DeQuery = &Variant{
		Name: "de_query",
		Fields: []FieldSpec{
			scalar(OrganismOntologyTermID),
			list(TissueOntologyTermIDs, 0),
			list(CellTypeOntologyTermIDs, 0),
			list(PublicationCitations, 0),
			list(DiseaseOntologyTermIDs, 0),
			list(SelfReportedEthnicityOntologyTermIDs, 0),
			list(SexOntologyTermIDs, 0),
		},
	}

	WmgFiltersQuery = &Variant{
		Name: "wmg_filters_query",
		Fields: []FieldSpec{
			scalar(OrganismOntologyTermID),
			list(TissueOntologyTermIDs, 0),
			list(TissueOriginalOntologyTermIDs, 0),
			list(DatasetIDs, 0),
			list(DevelopmentStageOntologyTermIDs, 0),
			list(DiseaseOntologyTermIDs, 0),
			list(SelfReportedEthnicityOntologyTermIDs, 0),
			list(SexOntologyTermIDs, 0),
			list(CellTypeOntologyTermIDs, 0),
			list(PublicationCitations, 0),
		},
	}

	MarkerGeneQuery = &Variant{
		Name: "marker_gene_query",
		Fields: []FieldSpec{
			scalar(OrganismOntologyTermID),
			scalar(TissueOntologyTermID),
			scalar(CellTypeOntologyTermID),
		},
	}
)

var Variants = []*Variant{WmgQuery, WmgQueryV2, DeQuery, WmgFiltersQuery, MarkerGeneQuery}

func VariantByName(name string) (*Variant, bool) {
	for _, variant := range Variants {
		if variant.Name == name {
			return variant, true
		}
	}
	return nil, false
}
