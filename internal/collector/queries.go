package collector

// DefaultQueries are the search strings covering Indonesian and English
// healthcare dataset repositories.
var DefaultQueries = []string{
	`"healthcare dataset" in:name,description,readme`,
	`"medical dataset" in:name,description,readme`,
	`"hospital dataset" in:name,description,readme`,
	`"simrs" in:name,description,readme`,
	`"obat" "dataset" indonesia in:name,description,readme`,
	`"kardiovaskular" dataset in:name,description,readme`,
	`"indonesia health" dataset in:name,description,readme`,
	`"rekam medis" dataset in:name,description,readme`,
}
