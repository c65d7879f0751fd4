package metadata

// --- Metadata table keys ---
// These keys are used for the 'key' column in the 'metadata' table.
const (
	// GlobalMeanRatingKey stores the lazily computed corpus-wide weighted mean
	// rating. It is the Bayesian prior used to smooth small-sample dish averages.
	GlobalMeanRatingKey = "global_mean_rating"

	// BayesMKey stores the effective sample size of the Bayesian prior.
	// When absent the engine falls back to DefaultBayesM.
	BayesMKey = "bayes_m"
)

// DefaultBayesM is used when no bayes_m row exists or its value is not finite.
// Note: positivity of a stored bayes_m is an operational invariant maintained
// outside this service; a zero or negative stored value is not corrected here.
const DefaultBayesM = 10.0
