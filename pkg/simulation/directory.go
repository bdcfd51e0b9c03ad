package simulation

import (
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// Camera is the point the view follows. It keeps its last position once the
// player is gone.
type Camera struct {
	Position geometry.Vector2D
}

func (c *Camera) Pos() geometry.Vector2D { return c.Position }

// Follow moves the camera onto b while b is alive.
func (c *Camera) Follow(b *body.Body) {
	if b.Alive() {
		c.Position = b.Position
	}
}

// Directory tells the enemies who to go after. It implements ai.TargetLocator.
type Directory struct {
	player     *body.Body
	playerLike []*body.Body
	camera     *Camera
	cameraBody *body.Body
}

var _ ai.TargetLocator = (*Directory)(nil)

func NewDirectory(camera *Camera) *Directory {
	return &Directory{camera: camera}
}

func (d *Directory) SetPlayer(b *body.Body)     { d.player = b }
func (d *Directory) SetCameraBody(b *body.Body) { d.cameraBody = b }

// AddPlayerLike registers a decoy enemies treat as a player when the real one is gone.
func (d *Directory) AddPlayerLike(b *body.Body) {
	if b != nil {
		d.playerLike = append(d.playerLike, b)
	}
}

func (d *Directory) PlayerBody() *body.Body {
	if d.player.Alive() {
		return d.player
	}
	return nil
}

func (d *Directory) PlayerLikeBody() *body.Body {
	for _, b := range d.playerLike {
		if b.Alive() {
			return b
		}
	}
	return nil
}

func (d *Directory) CameraBody() *body.Body {
	if d.cameraBody.Alive() {
		return d.cameraBody
	}
	return nil
}

// The transform lookups mirror the body ones: a dead ship leaves no transform
// behind, only the camera does.

func (d *Directory) PlayerTransform() ai.Transform {
	if b := d.PlayerBody(); b != nil {
		return b
	}
	return nil
}

func (d *Directory) PlayerLikeTransform() ai.Transform {
	if b := d.PlayerLikeBody(); b != nil {
		return b
	}
	return nil
}

func (d *Directory) CameraTransform() ai.Transform {
	if d.camera == nil {
		return nil
	}
	return d.camera
}
