package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"trading-relay/internal/domain"
	"trading-relay/internal/service"
)

func main() {
	addr := flag.String("url", "ws://localhost:8000/ws", "websocket endpoint")
	model := flag.String("model", "", "model override (default "+domain.DefaultModel+")")
	subject := flag.String("subject", "cli", "subject for the minted token when JWT_SECRET is set")
	origin := flag.String("origin", "", "Origin header to send")
	flag.Parse()

	_ = godotenv.Load()

	target, err := url.Parse(*addr)
	if err != nil {
		log.Fatalf("url invalida: %v", err)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		token, err := service.NewJWTService(secret, time.Hour).GenerateAccessToken(*subject)
		if err != nil {
			log.Fatalf("generar token: %v", err)
		}
		q := target.Query()
		q.Set("token", token)
		target.RawQuery = q.Encode()
	}

	header := http.Header{}
	if *origin != "" {
		header.Set("Origin", *origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial(target.String(), header)
	if err != nil {
		log.Fatalf("conectar: %v", err)
	}
	defer conn.Close()

	conversationID := uuid.NewString()
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("---- Modo Chat (escribe 'salir' para terminar) ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") {
			fmt.Println("Saliendo del chat...")
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		if err := conn.WriteJSON(domain.InboundEnvelope{
			Message:        text,
			Model:          *model,
			ConversationID: conversationID,
		}); err != nil {
			log.Fatalf("enviar: %v", err)
		}

		var out domain.OutboundEnvelope
		if err := conn.ReadJSON(&out); err != nil {
			log.Fatalf("recibir: %v", err)
		}
		if out.IsError() {
			fmt.Printf("error > %s\n", out.Error)
			continue
		}
		finish := "null"
		if out.Metadata.FinishReason != nil {
			finish = *out.Metadata.FinishReason
		}
		fmt.Printf("Asistente > %s\n", *out.Response)
		fmt.Printf("  [%s, %d tokens, %s]\n", out.Metadata.Model, out.Metadata.Tokens, finish)
	}
}
