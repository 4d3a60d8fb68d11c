package console

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/display"
	"github.com/pixil98/go-rotmg/internal/game"
	"github.com/pixil98/go-rotmg/internal/player"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

type command struct {
	usage   string
	help    string
	minArgs int
	run     func(ctx context.Context, s *session, args []string) error
}

func (c *Console) buildCommands() map[string]command {
	return map[string]command{
		"help": {
			usage: "help",
			help:  "list commands",
			run:   c.cmdHelp,
		},
		"categories": {
			usage: "categories",
			help:  "list registry categories and their sizes",
			run:   c.cmdCategories,
		},
		"list": {
			usage:   "list <category> [kind]",
			help:    "list the records of a category",
			minArgs: 1,
			run:     c.cmdList,
		},
		"show": {
			usage:   "show <category> <key>",
			help:    "describe one record",
			minArgs: 2,
			run:     c.cmdShow,
		},
		"classes": {
			usage: "classes",
			help:  "list playable classes",
			run:   c.cmdClasses,
		},
		"select": {
			usage:   "select <class>",
			help:    "select a class and reset the inventory to its starting equipment",
			minArgs: 1,
			run:     c.cmdSelect,
		},
		"give": {
			usage:   "give <equipment>",
			help:    "add a new item to the inventory",
			minArgs: 1,
			run:     c.cmdGive,
		},
		"inventory": {
			usage: "inventory",
			help:  "show the inventory",
			run:   c.cmdInventory,
		},
		"drop": {
			usage:   "drop <instance id>",
			help:    "remove an item from the inventory",
			minArgs: 1,
			run:     c.cmdDrop,
		},
		"spawn": {
			usage:   "spawn <x> <y>",
			help:    "spawn a character of the selected class",
			minArgs: 2,
			run:     c.cmdSpawn,
		},
		"particle": {
			usage:   "particle <x> <y> <lifetime>",
			help:    "spawn a white particle at a fixed point",
			minArgs: 3,
			run:     c.cmdParticle,
		},
		"quit": {
			usage: "quit",
			help:  "close the session",
			run: func(_ context.Context, s *session, _ []string) error {
				s.quit = true
				return nil
			},
		},
	}
}

func (c *Console) cmdHelp(_ context.Context, s *session, _ []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(&b, "%-28s %s\n", cmd.usage, cmd.help)
	}
	return s.writeLine(strings.TrimSuffix(b.String(), "\n"))
}

func (c *Console) cmdCategories(_ context.Context, s *session, _ []string) error {
	categories := c.assets.Categories()
	if len(categories) == 0 {
		return userErrorf("Nothing has been loaded yet.")
	}

	var b strings.Builder
	for _, name := range categories {
		fmt.Fprintf(&b, "%-16s %d\n", name, c.assets.Len(name))
	}
	return s.writeLine(strings.TrimSuffix(b.String(), "\n"))
}

func (c *Console) cmdList(_ context.Context, s *session, args []string) error {
	category := args[0]
	var kind string
	if len(args) > 1 {
		kind = strings.ToLower(args[1])
	}

	var b strings.Builder
	for key, v := range c.assets.Entries(category) {
		obj, isObj := v.(rotmg.Object)
		if kind != "" && (!isObj || obj.Kind().String() != kind) {
			continue
		}
		if isObj {
			b.WriteString(display.Summary(obj))
		} else {
			b.WriteString(key)
		}
		b.WriteByte('\n')
	}

	if b.Len() == 0 {
		return userErrorf("No records in %s.", category)
	}
	return s.writeLine(strings.TrimSuffix(b.String(), "\n"))
}

func (c *Console) cmdShow(_ context.Context, s *session, args []string) error {
	category, key := args[0], strings.Join(args[1:], " ")

	v, ok := c.assets.Get(category, key)
	if !ok {
		return userErrorf("No %s record named %q.", category, key)
	}
	obj, ok := v.(rotmg.Object)
	if !ok {
		return s.writeLine(display.WrapWidth(fmt.Sprintf("%s: %+v", key, v), c.width))
	}

	text, err := display.Describe(obj, c.width)
	if err != nil {
		return err
	}
	return s.writeLine(strings.TrimSuffix(text, "\n"))
}

func (c *Console) cmdClasses(_ context.Context, s *session, _ []string) error {
	var names []string
	for _, v := range c.assets.Entries(c.category) {
		if p, ok := v.(*rotmg.Player); ok {
			names = append(names, p.DisplayName())
		}
	}
	if len(names) == 0 {
		return userErrorf("No classes are loaded.")
	}
	return s.writeLine(display.WrapWidth(strings.Join(names, ", "), c.width))
}

func (c *Console) cmdSelect(ctx context.Context, s *session, args []string) error {
	key := strings.Join(args, " ")
	if err := c.players.SelectClass(ctx, key); err != nil {
		return userError(err)
	}

	class, _ := c.players.Selected()
	return s.writeLine(fmt.Sprintf("You are now a %s.", class.DisplayName()))
}

func (c *Console) cmdGive(_ context.Context, s *session, args []string) error {
	key := strings.Join(args, " ")
	item, slot, err := c.players.GiveItem(key)
	if err != nil {
		if errors.Is(err, game.ErrInventoryFull) {
			return userErrorf("Your inventory is full.")
		}
		return userError(err)
	}
	return s.writeLine(fmt.Sprintf("Added %s to slot %d (%s).", item.Equipment.DisplayName(), slot, item.InstanceID))
}

func (c *Console) cmdInventory(_ context.Context, s *session, _ []string) error {
	var b strings.Builder
	for i, item := range c.players.Inventory() {
		if item == nil {
			continue
		}
		fmt.Fprintf(&b, "%2d. %-32s %s %s\n", i, item.Equipment.DisplayName(), item.Equipment.TierLabel(), item.InstanceID)
	}
	if b.Len() == 0 {
		return userErrorf("Your inventory is empty.")
	}
	return s.writeLine(strings.TrimSuffix(b.String(), "\n"))
}

func (c *Console) cmdDrop(_ context.Context, s *session, args []string) error {
	item, ok := c.players.RemoveItem(args[0])
	if !ok {
		return userErrorf("No item %q in the inventory.", args[0])
	}
	return s.writeLine(fmt.Sprintf("Dropped %s.", item.Equipment.DisplayName()))
}

func (c *Console) cmdSpawn(_ context.Context, s *session, args []string) error {
	pos, err := parseVec2(args[0], args[1])
	if err != nil {
		return err
	}

	ch, err := c.players.Spawn(c.world, pos)
	if err != nil {
		if errors.Is(err, player.ErrNoClass) {
			return userErrorf("Select a class first.")
		}
		return err
	}
	return s.writeLine(fmt.Sprintf("Spawned %s.", ch.ID()))
}

func (c *Console) cmdParticle(_ context.Context, s *session, args []string) error {
	pos, err := parseVec2(args[0], args[1])
	if err != nil {
		return err
	}
	lifetime, err := time.ParseDuration(args[2])
	if err != nil || lifetime <= 0 {
		return userErrorf("Invalid lifetime %q.", args[2])
	}

	p := game.NewParticle(game.Point(pos), lifetime, mgl32.Vec4{1, 1, 1, 1})
	c.world.Spawn(p)
	return s.writeLine(fmt.Sprintf("Spawned %s.", p.ID()))
}

func parseVec2(xs, ys string) (mgl32.Vec2, error) {
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return mgl32.Vec2{}, userErrorf("Invalid coordinate %q.", xs)
	}
	y, err := strconv.ParseFloat(ys, 32)
	if err != nil {
		return mgl32.Vec2{}, userErrorf("Invalid coordinate %q.", ys)
	}
	return mgl32.Vec2{float32(x), float32(y)}, nil
}
