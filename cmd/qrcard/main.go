package main

import (
	"fmt"
	"os"

	"github.com/saharamess/messbot/internal/qr"
)

// Renders one sample mess card to card.png so the layout can be checked
// by eye without a running bot.
func main() {
	signer := qr.NewSigner("local-preview-secret")

	nonce, err := qr.NewNonce()
	if err != nil {
		fmt.Printf("Failed to generate nonce: %v\n", err)
		os.Exit(1)
	}

	payload := signer.Sign(qr.Payload{StudentID: 42, Version: 3, Nonce: nonce})

	renderer := qr.NewCardRenderer(os.Getenv("QR_CARD_FONT"))
	png, err := renderer.Render(payload, "Mess Pass", "Ananya Nair · B21ME1042")
	if err != nil {
		fmt.Printf("Failed to render card: %v\n", err)
		os.Exit(1)
	}

	filename := "card.png"
	if err := os.WriteFile(filename, png, 0644); err != nil {
		fmt.Printf("Failed to save file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Card saved to %s\n", filename)
	fmt.Printf("📦 Payload: %s\n", payload)
	fmt.Printf("🖼 Size: %d bytes\n", len(png))
}
