package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/planweave/planweave/internal/plan"
)

// TemplateGenerator produces draft steps from canned templates keyed on goal
// keywords. It backs development and demos when no LLM token is configured,
// and doubles as the permanent fallback generator.
type TemplateGenerator struct{}

// NewTemplateGenerator creates a TemplateGenerator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// GenerateSteps selects a template matching the goal's keywords, falling
// back to a generic three-step plan.
func (TemplateGenerator) GenerateSteps(_ context.Context, goal string) []plan.Step {
	g := strings.ToLower(goal)

	switch {
	case strings.Contains(g, "jaipur") && strings.Contains(g, "trip"):
		return jaipurTripSteps()
	case strings.Contains(g, "hyderabad") && strings.Contains(g, "vegetarian"):
		return hyderabadFoodSteps()
	case strings.Contains(g, "python") && strings.Contains(g, "study"):
		return pythonStudySteps()
	case strings.Contains(g, "vizag") || strings.Contains(g, "visakhapatnam"):
		return vizagWeekendSteps()
	default:
		return genericSteps(goal)
	}
}

func jaipurTripSteps() []plan.Step {
	return []plan.Step{
		{
			StepNumber:        1,
			Title:             "Day 1: Explore Historic Forts and Palaces",
			Description:       "Visit Amber Fort in the morning, explore the magnificent architecture and take elephant rides. Afternoon visit to City Palace and Jantar Mantar observatory.",
			EstimatedDuration: "8 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Amber Fort Jaipur", "City Palace timings", "Jaipur attractions"},
		},
		{
			StepNumber:        2,
			Title:             "Day 2: Local Markets and Cultural Food",
			Description:       "Morning visit to Johari Bazaar for jewelry shopping, followed by traditional Rajasthani lunch. Evening at Chokhi Dhani for cultural performances.",
			EstimatedDuration: "7 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Jaipur markets", "Rajasthani food", "cultural activities"},
		},
		{
			StepNumber:        3,
			Title:             "Day 3: Hawa Mahal and Local Experiences",
			Description:       "Early morning photography at Hawa Mahal, visit local handicraft workshops, and enjoy sunset at Nahargarh Fort with panoramic city views.",
			EstimatedDuration: "6 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Hawa Mahal photography", "Nahargarh Fort sunset"},
		},
	}
}

func hyderabadFoodSteps() []plan.Step {
	return []plan.Step{
		{
			StepNumber:        1,
			Title:             "Day 1 Morning: Traditional South Indian Breakfast",
			Description:       "Start with authentic breakfast at Ram Ki Bandi or similar local spots. Try dosa varieties, idli, vada, and filter coffee.",
			EstimatedDuration: "3 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Hyderabad vegetarian breakfast", "best dosa places"},
		},
		{
			StepNumber:        2,
			Title:             "Day 1 Evening: Charminar Street Food",
			Description:       "Explore vegetarian street food around Charminar including pani puri, bhel puri, and local sweets like double ka meetha.",
			EstimatedDuration: "4 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Charminar vegetarian food", "Hyderabad street food"},
		},
		{
			StepNumber:        3,
			Title:             "Day 2: Vegetarian Biryani and Traditional Cuisine",
			Description:       "Experience famous vegetarian biryani at Paradise or Bawarchi, followed by traditional Andhra thali at a local restaurant.",
			EstimatedDuration: "5 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"vegetarian biryani Hyderabad", "Andhra vegetarian restaurants"},
		},
	}
}

func pythonStudySteps() []plan.Step {
	return []plan.Step{
		{
			StepNumber:        1,
			Title:             "Morning Theory Session (30 minutes)",
			Description:       "Study Python fundamentals including syntax, variables, data types, and basic operations using online resources or documentation.",
			EstimatedDuration: "30 minutes",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Python basics tutorial", "Python syntax guide"},
		},
		{
			StepNumber:        2,
			Title:             "Hands-on Coding Practice (45 minutes)",
			Description:       "Practice coding exercises on platforms like HackerRank, LeetCode, or Python.org tutorials focusing on basic problem solving.",
			EstimatedDuration: "45 minutes",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Python coding practice", "beginner Python exercises"},
		},
		{
			StepNumber:        3,
			Title:             "Project Work (60 minutes)",
			Description:       "Work on a small practical project like a calculator, to-do list, or simple game to apply learned concepts.",
			EstimatedDuration: "60 minutes",
			RequiresResearch:  true,
			ResearchTopics:    []string{"beginner Python projects", "Python project ideas"},
		},
		{
			StepNumber:        4,
			Title:             "Review and Documentation (20 minutes)",
			Description:       "Review the day's learning, document key concepts, and plan tomorrow's topics based on progress.",
			EstimatedDuration: "20 minutes",
			RequiresResearch:  false,
		},
		{
			StepNumber:        5,
			Title:             "Community Engagement (15 minutes)",
			Description:       "Engage with Python community through forums, Discord, or Stack Overflow to ask questions and help others.",
			EstimatedDuration: "15 minutes",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Python community forums", "Python Discord servers"},
		},
	}
}

func vizagWeekendSteps() []plan.Step {
	return []plan.Step{
		{
			StepNumber:        1,
			Title:             "Saturday Morning: Beach Activities at RK Beach",
			Description:       "Start with sunrise viewing at Ramakrishna Beach, enjoy water sports, beach volleyball, and morning walk along the coastline.",
			EstimatedDuration: "4 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"RK Beach activities", "Vizag water sports"},
		},
		{
			StepNumber:        2,
			Title:             "Saturday Afternoon: Kailasagiri Hill Hiking",
			Description:       "Take cable car or hike up to Kailasagiri Hill for panoramic views of the city and coast. Visit Shiva Parvati statue.",
			EstimatedDuration: "3 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Kailasagiri hiking trails", "Vizag hill stations"},
		},
		{
			StepNumber:        3,
			Title:             "Saturday Evening: Seafood Dinner",
			Description:       "Experience fresh seafood at local coastal restaurants with traditional Andhra preparations like fish curry and prawn fry.",
			EstimatedDuration: "2 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"best seafood restaurants Vizag", "Andhra fish curry"},
		},
		{
			StepNumber:        4,
			Title:             "Sunday: Araku Valley Day Trip",
			Description:       "Take scenic train journey or drive to Araku Valley for coffee plantations, tribal culture, and valley views.",
			EstimatedDuration: "10 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{"Araku Valley tour", "Vizag to Araku train"},
		},
	}
}

func genericSteps(goal string) []plan.Step {
	return []plan.Step{
		{
			StepNumber:        1,
			Title:             "Research and Planning",
			Description:       fmt.Sprintf("Conduct thorough research about: %s. Gather information from reliable sources and create a preliminary plan.", goal),
			EstimatedDuration: "1 hour",
			RequiresResearch:  true,
			ResearchTopics:    []string{goal},
		},
		{
			StepNumber:        2,
			Title:             "Implementation Phase 1",
			Description:       "Begin the first phase of executing your plan with the most important and foundational tasks.",
			EstimatedDuration: "2 hours",
			RequiresResearch:  true,
			ResearchTopics:    []string{goal + " implementation", "how to " + goal},
		},
		{
			StepNumber:        3,
			Title:             "Review and Adjust",
			Description:       "Review progress, gather feedback, and make necessary adjustments to your approach for better results.",
			EstimatedDuration: "30 minutes",
			RequiresResearch:  false,
		},
	}
}
