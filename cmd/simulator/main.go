package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = strings.TrimRight(envURL, "/")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		seedCmd(apiURL, args)
	case "cook":
		cookCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Kitchen Simulator - Development tool for exercising the API

USAGE:
  simulator <command> [options]

COMMANDS:
  seed      Register a fake user and save recipes for them
  cook      Detect ingredients in a photo, fetch recommendations and save the first one
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Fake user with 25 saved recipes, enough for three pages
  simulator seed --count=25

  # Full photo flow as an existing user
  simulator cook --image=fridge.jpg --email=me@example.com --password=secret`)
}

func seedCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	count := fs.Int("count", 25, "Number of recipes to create")
	fs.Parse(args)

	if *count < 0 || *count > 1000 {
		fmt.Println("Error: --count must be between 0 and 1000")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Kitchen Simulator: Seed ===")
	fmt.Println()

	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 16)

	fmt.Print("Registering user... ")
	user, err := client.RegisterUser(gofakeit.Name(), email, password)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (id: %d)\n", user.ID)

	token, err := client.Login(email, password)
	if err != nil {
		fmt.Printf("Failed to log in: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saving %d recipes:\n", *count)
	for i := 0; i < *count; i++ {
		ingredients := []string{gofakeit.Vegetable(), gofakeit.Fruit(), gofakeit.Vegetable()}
		recipe, err := client.CreateRecipe(token, gofakeit.Dinner(), ingredients)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s\n", i+1, *count, recipe.Name)
	}

	page, err := client.ListRecipes(token, 1, 10)
	if err != nil {
		fmt.Printf("Failed to list recipes: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  SEEDED")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Printf("  Recipes:  %d\n", page.Total)
	fmt.Printf("  Token:    %s\n", token)
	fmt.Println()
}

func cookCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("cook", flag.ExitOnError)
	imagePath := fs.String("image", "", "Path to a photo of ingredients")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	save := fs.Bool("save", true, "Save the first recommendation as a recipe")
	fs.Parse(args)

	if *imagePath == "" || *email == "" || *password == "" {
		fmt.Println("Error: --image, --email and --password are required")
		os.Exit(1)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Printf("Error: failed to read image: %v\n", err)
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Kitchen Simulator: Cook ===")
	fmt.Println()

	token, err := client.Login(*email, *password)
	if err != nil {
		fmt.Printf("Failed to log in: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Detecting ingredients... ")
	ingredients, err := client.AnalyzeImage(token, *imagePath, http.DetectContentType(image), image)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (%d found)\n", len(ingredients))
	for _, ingredient := range ingredients {
		fmt.Printf("  - %s\n", ingredient)
	}

	fmt.Println()
	fmt.Print("Fetching recommendations... ")
	recommendations, err := client.GetRecipes(token, ingredients)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (%d found)\n", len(recommendations))
	for i, rec := range recommendations {
		fmt.Printf("  %d. %s\n     %s\n", i+1, rec.Name, rec.Link)
	}

	if !*save || len(recommendations) == 0 {
		return
	}

	recipe, err := client.CreateRecipe(token, recommendations[0].Name, ingredients)
	if err != nil {
		fmt.Printf("Failed to save recipe: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf("Saved %q as recipe #%d\n", recipe.Name, recipe.ID)
}
