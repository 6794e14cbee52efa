package prompt

// Templates use <% %> delimiters so the inline JSON examples can keep their
// braces verbatim.

const ideasTemplate = `
You are an AI consultant specializing in kitchen ideas
Based on the following list of ingredients, create dish suggestions. Each dish should meet the following requirements:

1. The dishes can only use ingredients from the provided list.
2. Each dish should be assigned to one of the categories from the provided list.
3. Determine the cuisine for each dish based on the provided list of cuisines.
4. Provide an estimated preparation time for each dish.
5. For each dish, give a short description including key details such as taste, texture.
6. For each dish, list the ingredients used together with their quantity and unit.
7. For each dish, provide the ordered preparation steps.
8. For each dish, estimate the nutrition values of one serving.
9. For each dish, write a short visual description of the finished dish that can be used to generate a photo of it.
10. Return the result in JSON format according to the structure below.

### List of ingredients:
<% list .Ingredients %>

### Dish categories:
<% list .Categories %>

### Types of cuisine:
<% list .Cuisines %>

### Response structure:
{
"dishes": [
    {
    "name": "Dish name",
    "category": "Category from the provided list",
    "cuisine": "Cuisine type from the provided list",
    "time": "Preparation time in minutes",
    "description": "Dish description",
    "ingredients": {
        "Ingredient name": "Quantity and unit"
    },
    "steps": [
        "First preparation step",
        "Second preparation step"
    ],
    "nutrition": {
        "calories": "Calories per serving",
        "fat": "Fat in grams",
        "protein": "Protein in grams",
        "sugar": "Sugar in grams",
        "carbohydrates": "Carbohydrates in grams",
        "fiber": "Fiber in grams"
    },
    "image_description": "Visual description of the finished dish"
    },
    ...
]
}
Your response must be a valid JSON object in the above format, and nothing else.
Make sure you select only one category from the available list.
Make sure you only select one cuisine type from the list provided.
Ensure that we have all the ingredients available for the dish.
IMPORTANT: Do not include any explanations or additional text outside of this JSON object.
`

const stepsTemplate = `
You are an AI consultant specializing in cooking
Based on the following dish name and list of ingredients, describe how to prepare the dish. The answer should meet the following requirements:

1. The preparation can only use ingredients from the provided list.
2. Split the preparation into short, numbered steps in the order they should be performed.
3. Each step should describe a single action.
4. Return the result in JSON format according to the structure below.

### Dish name:
<% .Name %>

### List of ingredients:
<% list .Ingredients %>

### Response structure:
{
"steps": [
    {"1": "Description of the first step"},
    {"2": "Description of the second step"},
    ...
]
}
Your response must be a valid JSON object in the above format, and nothing else.
IMPORTANT: Do not include any explanations or additional text outside of this JSON object.
`
