package gitconfig

// KeyValueTally records, for one configuration key, how many repositories
// reported each distinct value and which repositories contributed.
type KeyValueTally struct {
	Key                      string
	ValueCounts              map[string]int
	ContributingRepositories []string
}

// Aggregation holds one tally per configuration key observed across repositories.
type Aggregation struct {
	// KeyOrder preserves the order keys were first observed across all repositories.
	KeyOrder []string
	// Tallies maps each observed key to its tally.
	Tallies map[string]*KeyValueTally
	// TotalRepositories counts the repositories that contributed configuration.
	TotalRepositories int
}

// Aggregate folds repository configurations into per-key tallies in a single
// pass over every key/value pair.
func Aggregate(repositoryConfigurations []RepositoryConfiguration) Aggregation {
	aggregation := Aggregation{
		Tallies:           make(map[string]*KeyValueTally),
		TotalRepositories: len(repositoryConfigurations),
	}

	for _, repositoryConfiguration := range repositoryConfigurations {
		for _, configurationKey := range repositoryConfiguration.KeyOrder {
			configurationValue := repositoryConfiguration.Values[configurationKey]

			keyTally, keyObserved := aggregation.Tallies[configurationKey]
			if !keyObserved {
				keyTally = &KeyValueTally{
					Key:         configurationKey,
					ValueCounts: make(map[string]int),
				}
				aggregation.Tallies[configurationKey] = keyTally
				aggregation.KeyOrder = append(aggregation.KeyOrder, configurationKey)
			}

			keyTally.ValueCounts[configurationValue]++
			keyTally.ContributingRepositories = append(keyTally.ContributingRepositories, repositoryConfiguration.Path)
		}
	}

	return aggregation
}
