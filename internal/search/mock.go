package search

import (
	"fmt"
	"strings"
)

// mockResults serves canned responses for a handful of known topics so
// development and tests work without credentials, falling back to a single
// generic templated result.
func mockResults(query string) []Result {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "jaipur"):
		return []Result{
			{
				Title:   "Jaipur Tourism - Top Attractions",
				Snippet: "Discover the Pink City of India with its magnificent palaces, forts, and vibrant culture. Visit Amber Fort, City Palace, and Hawa Mahal.",
				URL:     "https://example.com/jaipur-tourism",
				Source:  SourceMock,
			},
			{
				Title:   "Best Food in Jaipur - Traditional Rajasthani Cuisine",
				Snippet: "Experience authentic Rajasthani flavors with dal bati churma, laal maas, and ghewar. Top restaurants and street food spots.",
				URL:     "https://example.com/jaipur-food",
				Source:  SourceMock,
			},
			{
				Title:   "Jaipur Travel Guide - 3 Day Itinerary",
				Snippet: "Complete 3-day travel guide covering all major attractions, local markets, and cultural experiences in Jaipur.",
				URL:     "https://example.com/jaipur-guide",
				Source:  SourceMock,
			},
		}

	case strings.Contains(q, "hyderabad") && strings.Contains(q, "vegetarian"):
		return []Result{
			{
				Title:   "Best Vegetarian Restaurants in Hyderabad",
				Snippet: "Top vegetarian dining spots in Hyderabad including traditional South Indian, North Indian, and fusion cuisine.",
				URL:     "https://example.com/hyderabad-veg",
				Source:  SourceMock,
			},
			{
				Title:   "Hyderabad Vegetarian Food Tour",
				Snippet: "Explore the diverse vegetarian food scene including famous Hyderabadi biryani variants, dosas, and sweets.",
				URL:     "https://example.com/hyderabad-veg-tour",
				Source:  SourceMock,
			},
		}

	case strings.Contains(q, "vizag") || strings.Contains(q, "visakhapatnam"):
		return []Result{
			{
				Title:   "Vizag Weekend Guide - Beaches and Hills",
				Snippet: "Perfect weekend getaway with beautiful beaches, Araku Valley hills, and fresh seafood experiences.",
				URL:     "https://example.com/vizag-weekend",
				Source:  SourceMock,
			},
			{
				Title:   "Best Seafood Restaurants in Visakhapatnam",
				Snippet: "Top seafood dining spots along the coast with fresh catches and traditional Andhra preparations.",
				URL:     "https://example.com/vizag-seafood",
				Source:  SourceMock,
			},
		}

	case strings.Contains(q, "python") && strings.Contains(q, "study"):
		return []Result{
			{
				Title:   "Python Learning Roadmap for Beginners",
				Snippet: "Complete guide to learning Python programming from basics to advanced concepts with practical projects.",
				URL:     "https://example.com/python-roadmap",
				Source:  SourceMock,
			},
			{
				Title:   "Daily Python Study Routine - Best Practices",
				Snippet: "Effective daily study techniques for mastering Python including coding practice, projects, and resources.",
				URL:     "https://example.com/python-study",
				Source:  SourceMock,
			},
		}

	default:
		return []Result{
			{
				Title:   fmt.Sprintf("Search Results for: %s", query),
				Snippet: fmt.Sprintf("General information and resources related to %s. This is mock data for development purposes.", query),
				URL:     "https://example.com/search",
				Source:  SourceMock,
			},
		}
	}
}
