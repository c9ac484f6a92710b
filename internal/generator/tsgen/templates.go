package tsgen

const entityTemplate = `// Code generated by schemaforge. DO NOT EDIT.
import {
  Column,
  Entity,
  JoinColumn,
  JoinTable,
  ManyToMany,
  ManyToOne,
  OneToMany,
  OneToOne,
  PrimaryColumn,
  PrimaryGeneratedColumn,
} from 'typeorm';
{{range .Targets}}import { {{.Target}} } from '../{{.TargetFile}}/{{.TargetFile}}.entity';
{{end}}
@Entity({ name: '{{.Table}}' })
export class {{.Entity}} {
{{range .Fields}}  {{.Decorator}}
  {{.Name}}: {{.Type}};

{{end}}{{range .Relations}}  {{.Decorator}}
  {{.Name}}: {{.Type}};

{{end}}}
`

const serviceTemplate = `// Code generated by schemaforge. DO NOT EDIT.
import { Injectable, NotFoundException } from '@nestjs/common';
import { InjectRepository } from '@nestjs/typeorm';
import { Repository } from 'typeorm';

import { {{.Entity}} } from './{{.FileBase}}.entity';

@Injectable()
export class {{.Entity}}Service {
  constructor(
    @InjectRepository({{.Entity}})
    private readonly repository: Repository<{{.Entity}}>,
  ) {}

  findAll(): Promise<{{.Entity}}[]> {
    return this.repository.find();
  }

  async findOne(id: {{.PKType}}): Promise<{{.Entity}}> {
    const found = await this.repository.findOneBy({ id } as never);
    if (!found) {
      throw new NotFoundException();
    }
    return found;
  }

  create(data: Partial<{{.Entity}}>): Promise<{{.Entity}}> {
    return this.repository.save(this.repository.create(data));
  }

  async remove(id: {{.PKType}}): Promise<void> {
    await this.repository.delete(id);
  }
}
`

const controllerTemplate = `// Code generated by schemaforge. DO NOT EDIT.
import {
  Body,
  Controller,
  Delete,
  Get,
  Param,
{{if .PKPipe}}  {{.PKPipe}},
{{end}}  Post,
} from '@nestjs/common';

import { {{.Entity}} } from './{{.FileBase}}.entity';
import { {{.Entity}}Service } from './{{.FileBase}}.service';

@Controller('{{.Route}}')
export class {{.Entity}}Controller {
  constructor(private readonly service: {{.Entity}}Service) {}

  @Get()
  findAll(): Promise<{{.Entity}}[]> {
    return this.service.findAll();
  }

  @Get(':id')
  findOne(@Param('id'{{if .PKPipe}}, {{.PKPipe}}{{end}}) id: {{.PKType}}): Promise<{{.Entity}}> {
    return this.service.findOne(id);
  }

  @Post()
  create(@Body() data: Partial<{{.Entity}}>): Promise<{{.Entity}}> {
    return this.service.create(data);
  }

  @Delete(':id')
  remove(@Param('id'{{if .PKPipe}}, {{.PKPipe}}{{end}}) id: {{.PKType}}): Promise<void> {
    return this.service.remove(id);
  }
}
`

const moduleTemplate = `// Code generated by schemaforge. DO NOT EDIT.
import { Module } from '@nestjs/common';
import { TypeOrmModule } from '@nestjs/typeorm';

import { {{.Entity}} } from './{{.FileBase}}.entity';
import { {{.Entity}}Controller } from './{{.FileBase}}.controller';
import { {{.Entity}}Service } from './{{.FileBase}}.service';

@Module({
  imports: [TypeOrmModule.forFeature([{{.Entity}}])],
  controllers: [{{.Entity}}Controller],
  providers: [{{.Entity}}Service],
  exports: [{{.Entity}}Service],
})
export class {{.Entity}}Module {}
`

const specTemplate = `// Code generated by schemaforge. DO NOT EDIT.
import { {{.Entity}} } from './{{.FileBase}}.entity';

describe('{{.Entity}}', () => {
  it('instantiates', () => {
    expect(new {{.Entity}}()).toBeDefined();
  });
});
`
