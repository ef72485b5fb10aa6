package analysis

import "fmt"

const systemInstruction = "You are a helpful nutritionist assistant for gestational diabetes management. " +
	"Always answer with JSON only, without markdown or commentary."

func textPrompt(description string) string {
	return fmt.Sprintf(`Analyze the following meal description for someone managing gestational diabetes and provide:

1. Estimated carbohydrates in grams
2. Estimated sugar in grams
3. A brief summary of the meal
4. The main carbohydrate source, if any
5. 2-3 actionable recommendations for managing blood glucose

Meal description: %q

Respond with a JSON object:
{
  "estimatedCarbs": number,
  "estimatedSugar": number,
  "summary": "string",
  "carbSource": "string",
  "foodItems": ["string"],
  "recommendations": ["string", "string"]
}

Be conservative with estimates and consider cultural foods.`, description)
}

const photoPrompt = `Identify the foods in this meal photo and estimate its carbohydrate content.

Respond with a JSON object:
{
  "foods": ["string"],
  "description": "short natural description of the meal",
  "carbSource": "main carbohydrate food, or empty",
  "estimatedCarbs": number
}

If no food is visible, return an empty "foods" array.`

func clarifyPrompt(description string) string {
	return fmt.Sprintf(`Given this meal description: %q

Generate 1-2 clarifying questions to better estimate the carbohydrate content. Focus on:
- Portion sizes
- Specific ingredients
- Cooking methods
- Cultural food items

Return a JSON array of strings.`, description)
}
