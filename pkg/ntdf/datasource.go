package ntdf

type DataSource struct {
	OriginalFormat string
	Provider       string
	Dataset        string
	Identifier     string
}
