package provider

import "strings"

// Registry is the fixed, compile-time set of providers known to the application.
type Registry struct {
	providers []Provider
}

// NewRegistry constructs a registry over the supplied providers, dropping duplicates by name.
func NewRegistry(providers ...Provider) *Registry {
	seenNames := make(map[string]struct{}, len(providers))
	uniqueProviders := make([]Provider, 0, len(providers))
	for _, registeredProvider := range providers {
		if registeredProvider == nil {
			continue
		}
		providerName := registeredProvider.Name()
		if _, alreadySeen := seenNames[providerName]; alreadySeen {
			continue
		}
		seenNames[providerName] = struct{}{}
		uniqueProviders = append(uniqueProviders, registeredProvider)
	}
	return &Registry{providers: uniqueProviders}
}

// Providers returns every registered provider in registration order.
func (registry *Registry) Providers() []Provider {
	return registry.Select(nil, nil)
}

// Select filters registered providers by the include and exclude name lists.
//
// An empty include list admits every provider; exclusion wins over inclusion.
func (registry *Registry) Select(includeNames []string, excludeNames []string) []Provider {
	if registry == nil {
		return nil
	}

	includeSet := buildNameSet(includeNames)
	excludeSet := buildNameSet(excludeNames)

	selectedProviders := make([]Provider, 0, len(registry.providers))
	for _, registeredProvider := range registry.providers {
		providerName := registeredProvider.Name()
		if len(includeSet) > 0 {
			if _, included := includeSet[providerName]; !included {
				continue
			}
		}
		if _, excluded := excludeSet[providerName]; excluded {
			continue
		}
		selectedProviders = append(selectedProviders, registeredProvider)
	}
	return selectedProviders
}

func buildNameSet(candidateNames []string) map[string]struct{} {
	nameSet := make(map[string]struct{}, len(candidateNames))
	for _, candidateName := range candidateNames {
		trimmedName := strings.TrimSpace(candidateName)
		if len(trimmedName) == 0 {
			continue
		}
		nameSet[trimmedName] = struct{}{}
	}
	return nameSet
}
