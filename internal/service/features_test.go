package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
)

const featureSession = "feature-session"

type featureContext struct {
	env   *testEnv
	event domain.Event
	order *domain.Order
	teams map[string]uint
	err   error
}

func (c *featureContext) reset() error {
	if c.env != nil {
		c.env.close()
	}

	env, err := openTestEnv()
	if err != nil {
		return err
	}

	*c = featureContext{env: env, teams: map[string]uint{}}
	return nil
}

func (c *featureContext) anActiveEventWithTheDefaultCatalog(name string) error {
	ctx := context.Background()

	event, err := c.env.events.CreateEvent(ctx, domain.Event{
		Name:                name,
		KassensystemEnabled: true,
		ShotcounterEnabled:  true,
	})
	if err != nil {
		return err
	}

	c.event, err = c.env.events.ActivateEvent(ctx, event.ID)
	return err
}

func (c *featureContext) theCashierTaps(name string) error {
	_, _, err := c.env.carts.AddItem(context.Background(), c.event, featureSession, name)
	return err
}

func (c *featureContext) theCashierChecksOut() error {
	c.order, c.err = c.env.checkout.Checkout(context.Background(), c.event, featureSession, meta)
	return c.err
}

func (c *featureContext) anOrderWithTotalIsRecorded(total int) error {
	if c.order == nil {
		return errors.New("no order was recorded")
	}
	if c.order.Total != total {
		return fmt.Errorf("expected total %d, got %d", total, c.order.Total)
	}
	return nil
}

func (c *featureContext) noOrderIsRecorded() error {
	if c.order != nil {
		return fmt.Errorf("unexpected order %d", c.order.ID)
	}

	orders, err := c.env.checkout.ListOrders(context.Background(), c.event.ID, 0)
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(orders))
	}
	return nil
}

func (c *featureContext) theOrderHasDrinkSalesWithQuantityOneEach(n int) error {
	if len(c.order.DrinkSales) != n {
		return fmt.Errorf("expected %d drink sales, got %d", n, len(c.order.DrinkSales))
	}
	for _, sale := range c.order.DrinkSales {
		if sale.Quantity != 1 {
			return fmt.Errorf("drink sale %q has quantity %d", sale.Name, sale.Quantity)
		}
	}
	return nil
}

func (c *featureContext) theOrderHasItems(n int) error {
	if len(c.order.Items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(c.order.Items))
	}
	return nil
}

func (c *featureContext) theDrinkSaleForHasQuantity(name string, quantity int) error {
	for _, sale := range c.order.DrinkSales {
		if sale.Name == name {
			if sale.Quantity != quantity {
				return fmt.Errorf("expected quantity %d, got %d", quantity, sale.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no drink sale for %q", name)
}

func (c *featureContext) theCartIsEmpty() error {
	cart, err := c.env.carts.GetCart(context.Background(), c.event, featureSession)
	if err != nil {
		return err
	}
	if cart.ItemCount != 0 || cart.Total != 0 {
		return fmt.Errorf("expected an empty cart, got %d items", cart.ItemCount)
	}
	return nil
}

func (c *featureContext) theLatestOrderLogHasTotal(total int) error {
	logs, err := c.env.audit.ListOrderLogs(context.Background(), c.event.ID, 1)
	if err != nil {
		return err
	}
	if len(logs) != 1 {
		return fmt.Errorf("expected an order log, got %d", len(logs))
	}
	if logs[0].Total != total {
		return fmt.Errorf("expected log total %d, got %d", total, logs[0].Total)
	}
	return nil
}

func (c *featureContext) aTeam(name string) error {
	team, err := c.env.scoring.AddTeam(context.Background(), c.event.ID, name)
	if err != nil {
		return err
	}
	c.teams[team.Name] = team.ID
	return nil
}

func (c *featureContext) drinksShots(name string, amount int) error {
	id, ok := c.teams[name]
	if !ok {
		return fmt.Errorf("unknown team %q", name)
	}
	_, c.err = c.env.scoring.AddShots(context.Background(), c.event.ID, id, amount, meta)
	return nil
}

func (c *featureContext) theLastActionIsRejected() error {
	var verr *domain.ValidationError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	return nil
}

func (c *featureContext) teamHasShots(name string, shots int) error {
	teams, err := c.env.scoring.Teams(context.Background(), c.event.ID)
	if err != nil {
		return err
	}
	for _, team := range teams {
		if team.Name == name {
			if team.Shots != shots {
				return fmt.Errorf("expected %d shots, got %d", shots, team.Shots)
			}
			return nil
		}
	}
	return fmt.Errorf("no team %q", name)
}

func (c *featureContext) theLatestShotLogReadsWithAmount(name string, amount int) error {
	logs, err := c.env.audit.ListShotLogs(context.Background(), c.event.ID, 1)
	if err != nil {
		return err
	}
	if len(logs) != 1 {
		return fmt.Errorf("expected a shot log, got %d", len(logs))
	}
	if logs[0].TeamName != name || logs[0].Amount != amount {
		return fmt.Errorf("expected %q/%d, got %q/%d", name, amount, logs[0].TeamName, logs[0].Amount)
	}
	return nil
}

func (c *featureContext) teamIsRenamedTo(from, to string) error {
	id, ok := c.teams[from]
	if !ok {
		return fmt.Errorf("unknown team %q", from)
	}

	team, err := c.env.scoring.UpdateTeam(context.Background(), c.event.ID, id, domain.TeamUpdate{Name: &to})
	if err != nil {
		return err
	}
	delete(c.teams, from)
	c.teams[team.Name] = team.ID
	return nil
}

func (c *featureContext) theLeaderboardReads(expected string) error {
	teams, err := c.env.scoring.Leaderboard(context.Background(), c.event, 0)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(teams))
	for _, team := range teams {
		names = append(names, team.Name)
	}
	if got := strings.Join(names, ", "); got != expected {
		return fmt.Errorf("expected %q, got %q", expected, got)
	}
	return nil
}

func initializeScenario(ctx *godog.ScenarioContext) {
	fc := &featureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, fc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		fc.env.close()
		fc.env = nil
		return ctx, nil
	})

	ctx.Step(`^an active event "([^"]*)" with the default catalog$`, fc.anActiveEventWithTheDefaultCatalog)
	ctx.Step(`^a team "([^"]*)"$`, fc.aTeam)

	ctx.Step(`^the cashier taps "([^"]*)"$`, fc.theCashierTaps)
	ctx.Step(`^the cashier checks out$`, fc.theCashierChecksOut)
	ctx.Step(`^"([^"]*)" drinks (-?\d+) shots$`, fc.drinksShots)
	ctx.Step(`^team "([^"]*)" is renamed to "([^"]*)"$`, fc.teamIsRenamedTo)

	ctx.Step(`^an order with total (\d+) is recorded$`, fc.anOrderWithTotalIsRecorded)
	ctx.Step(`^no order is recorded$`, fc.noOrderIsRecorded)
	ctx.Step(`^the order has (\d+) drink sales with quantity 1 each$`, fc.theOrderHasDrinkSalesWithQuantityOneEach)
	ctx.Step(`^the order has (\d+) items$`, fc.theOrderHasItems)
	ctx.Step(`^the drink sale for "([^"]*)" has quantity (\d+)$`, fc.theDrinkSaleForHasQuantity)
	ctx.Step(`^the cart is empty$`, fc.theCartIsEmpty)
	ctx.Step(`^the latest order log has total (\d+)$`, fc.theLatestOrderLogHasTotal)
	ctx.Step(`^the last action is rejected$`, fc.theLastActionIsRejected)
	ctx.Step(`^team "([^"]*)" has (\d+) shots$`, fc.teamHasShots)
	ctx.Step(`^the latest shot log reads "([^"]*)" with amount (\d+)$`, fc.theLatestShotLogReadsWithAmount)
	ctx.Step(`^the leaderboard reads "([^"]*)"$`, fc.theLeaderboardReads)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
