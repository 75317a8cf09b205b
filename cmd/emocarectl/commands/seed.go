package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/auth"
	"emocare/backend/internal/model"
	"emocare/backend/internal/store"
)

// demoHours is the local hour pattern the seeded user writes at.
var demoHours = []int{8, 13, 21, 22, 22, 23, 9, 21}

var demoLines = []string{
	"Hoy me siento un poco cansada, dormí mal.",
	"¡Tuve un buen día en el trabajo!",
	"No sé cómo manejar el estrés de esta semana.",
	"Gracias, eso me ayudó mucho!",
	"Sigo pensando en la conversación con mi jefe.",
}

type seedOptions struct {
	email    string
	password string
	messages int
	timezone string
	cleanup  bool
}

// NewSeedDemoCmd creates the seed-demo command
func NewSeedDemoCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Seed a demo user with a message history",
		Long:  "Create or locate a demo user and replace its chat history with messages spread over several local hours, for suggestion previews",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.email = strings.ToLower(strings.TrimSpace(opts.email))
			if opts.email == "" {
				return errors.New("--email is required")
			}
			if opts.messages <= 0 {
				return errors.New("--messages must be positive")
			}
			location, err := time.LoadLocation(strings.TrimSpace(opts.timezone))
			if err != nil {
				return fmt.Errorf("load timezone: %w", err)
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			pg := newStore(cfg, pool)

			user, err := resolveDemoUser(ctx, pg, opts)
			if err != nil {
				return err
			}

			deleted, err := pg.DeleteUserSessions(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("cleanup existing sessions: %w", err)
			}
			if opts.cleanup {
				fmt.Fprintf(cmd.OutOrStdout(), "cleanup complete user_id=%s deleted_sessions=%d\n", user.ID, deleted)
				return nil
			}

			session, err := pg.CreateSession(ctx, user.ID)
			if err != nil {
				return err
			}
			inserted := 0
			for index, at := range demoTimeline(opts.messages, location, time.Now()) {
				if _, err := pg.InsertMessageAt(ctx, model.NewMessage{
					SessionID: session.ID,
					Author:    model.AuthorUser,
					Content:   demoLines[index%len(demoLines)],
				}, at); err != nil {
					return fmt.Errorf("insert message %d: %w", index+1, err)
				}
				if _, err := pg.InsertMessageAt(ctx, model.NewMessage{
					SessionID: session.ID,
					Author:    model.AuthorBot,
					Content:   "Gracias por contarme. ¿Qué necesitas ahora?",
					Emotion:   model.EmotionHappy,
				}, at.Add(30*time.Second)); err != nil {
					return fmt.Errorf("insert reply %d: %w", index+1, err)
				}
				inserted++
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"seed complete user_id=%s session_id=%s tz=%s inserted=%d replaced_sessions=%d\n",
				user.ID,
				session.ID,
				location,
				inserted,
				deleted,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "demo@emocare.local", "demo user email")
	cmd.Flags().StringVar(&opts.password, "password", "demo1234", "password used when the user is created")
	cmd.Flags().IntVar(&opts.messages, "messages", 24, "number of user messages to insert")
	cmd.Flags().StringVar(&opts.timezone, "tz", "America/Bogota", "IANA timezone for the local schedule")
	cmd.Flags().BoolVar(&opts.cleanup, "cleanup", false, "only remove the demo user's sessions")
	return cmd
}

func resolveDemoUser(ctx context.Context, pg *store.Store, opts seedOptions) (model.User, error) {
	user, err := pg.UserByEmail(ctx, opts.email)
	if err == nil {
		return user, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return model.User{}, err
	}
	if opts.cleanup {
		return model.User{}, fmt.Errorf("user not found: %s", opts.email)
	}
	return auth.NewService(pg, nil, nil, nil).Register(ctx, auth.RegisterInput{
		Email:    opts.email,
		Password: opts.password,
		Name:     "Demo",
	})
}

// demoTimeline returns count instants ending before now, one per day going
// backwards, each at the next hour of demoHours in loc. Results are ascending.
func demoTimeline(count int, loc *time.Location, now time.Time) []time.Time {
	if count <= 0 {
		return nil
	}
	today := now.In(loc)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	out := make([]time.Time, count)
	for i := 0; i < count; i++ {
		daysBack := count - i
		hour := demoHours[i%len(demoHours)]
		day := midnight.AddDate(0, 0, -daysBack)
		out[i] = time.Date(day.Year(), day.Month(), day.Day(), hour, (i*7)%60, 0, 0, loc).UTC()
	}
	return out
}
